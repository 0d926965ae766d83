package models

// Customization décrit la personnalisation brodée attachée à une ligne de panier.
type Customization struct {
	Placement string         `json:"placement,omitempty"`
	Size      string         `json:"size,omitempty"`
	Color     string         `json:"color,omitempty"`
	Styles    StyleSelection `json:"styles"`
	DesignRef string         `json:"design_ref,omitempty"` // clé de l'objet MinIO
	Notes     string         `json:"notes,omitempty"`
}

// StyleSelection regroupe les options de style choisies. Une catégorie vide ne coûte rien.
type StyleSelection struct {
	Coverage string   `json:"coverage,omitempty"`
	Material string   `json:"material,omitempty"`
	Border   string   `json:"border,omitempty"`
	Backing  string   `json:"backing,omitempty"`
	Cutting  string   `json:"cutting,omitempty"`
	Threads  []string `json:"threads,omitempty"`
	Upgrades []string `json:"upgrades,omitempty"`
}

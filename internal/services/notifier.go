package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/orders"
)

//go:embed templates/*.html
var templateFS embed.FS

var orderTemplate = template.Must(template.ParseFS(templateFS, "templates/order.html"))

const (
	qrName      = "suivi-commande.png"
	sendTimeout = 30 * time.Second
)

// Sender est implémenté par Mailer
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// MailNotifier prévient le client par e-mail à chaque étape de sa commande.
// Les envois partent en arrière-plan ; un échec est seulement journalisé.
type MailNotifier struct {
	sender  Sender
	baseURL string
	log     *zap.SugaredLogger
	wg      sync.WaitGroup
}

var _ orders.Notifier = (*MailNotifier)(nil)

func NewMailNotifier(sender Sender, publicBaseURL string, log *zap.SugaredLogger) *MailNotifier {
	return &MailNotifier{sender: sender, baseURL: strings.TrimRight(publicBaseURL, "/"), log: log}
}

func (n *MailNotifier) OrderSubmitted(o models.Order) {
	n.dispatch(o, "🧵 Commande reçue, en cours de validation",
		"Nous avons bien reçu votre commande. Notre atelier vérifie votre personnalisation avant de lancer la production.", "")
}

func (n *MailNotifier) OrderReviewed(o models.Order) {
	if o.Status == models.OrderRejected {
		n.dispatch(o, "❌ Commande refusée",
			"Après vérification, notre atelier ne peut pas réaliser votre commande en l'état.", o.ReviewNote)
		return
	}
	n.dispatch(o, "✅ Commande validée",
		"Bonne nouvelle : votre personnalisation a été validée par notre atelier.", o.ReviewNote)
}

func (n *MailNotifier) OrderStatusChanged(o models.Order) {
	n.dispatch(o, statusSubject(o.Status), statusMessage(o.Status), "")
}

func (n *MailNotifier) RefundUpdated(r models.Refund, o models.Order) {
	var subject, message string
	switch r.Status {
	case models.RefundApproved:
		subject = "💰 Remboursement accepté"
		message = fmt.Sprintf("Votre remboursement de %s a été accepté.", FormatCents(r.AmountCents))
	case models.RefundRejected:
		subject = "❌ Remboursement refusé"
		message = "Votre demande de remboursement n'a pas été acceptée."
	default:
		subject = "💰 Demande de remboursement reçue"
		message = fmt.Sprintf("Nous avons bien reçu votre demande de remboursement de %s.", FormatCents(r.AmountCents))
	}
	n.dispatch(o, subject, message, r.AdminNote)
}

// Wait attend la fin des envois en cours
func (n *MailNotifier) Wait() {
	n.wg.Wait()
}

func (n *MailNotifier) dispatch(o models.Order, subject, message, note string) {
	if o.CustomerEmail == "" {
		return
	}
	e, err := n.compose(o, subject, message, note)
	if err != nil {
		n.log.Warnf("❌ Erreur préparation e-mail commande %s: %v", o.ID, err)
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := n.sender.Send(ctx, e); err != nil {
			n.log.Warnf("❌ Erreur envoi e-mail %q à %s: %v", subject, o.CustomerEmail, err)
			return
		}
		n.log.Infof("📧 E-mail envoyé: %s → %s", subject, o.CustomerEmail)
	}()
}

type emailLine struct {
	Name     string
	Quantity int
	Unit     string
	Total    string
}

func (n *MailNotifier) compose(o models.Order, subject, message, note string) (Email, error) {
	data := struct {
		Title       string
		Message     string
		Note        string
		Reference   string
		Lines       []emailLine
		Shipping    string
		Total       string
		TrackingURL string
		HasQR       bool
	}{
		Title:     subject,
		Message:   message,
		Note:      note,
		Reference: shortRef(o),
		Shipping:  FormatCents(o.ShippingCents),
		Total:     FormatCents(o.TotalCents),
	}
	for _, it := range o.Items {
		data.Lines = append(data.Lines, emailLine{
			Name:     it.Name,
			Quantity: it.Quantity,
			Unit:     FormatCents(it.UnitPriceCents),
			Total:    FormatCents(it.LineTotalCents),
		})
	}

	e := Email{To: o.CustomerEmail, Subject: subject + " - Patchwork"}
	if n.baseURL != "" {
		data.TrackingURL = n.baseURL + "/orders/" + o.ID.String()
		png, err := qrcode.Encode(data.TrackingURL, qrcode.Medium, 256)
		if err != nil {
			n.log.Warnf("⚠️ QR de suivi non généré pour %s: %v", o.ID, err)
		} else {
			data.HasQR = true
			e.Inline = map[string][]byte{qrName: png}
		}
	}

	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, data); err != nil {
		return Email{}, err
	}
	e.HTML = buf.String()
	return e, nil
}

func statusSubject(status string) string {
	switch status {
	case models.OrderInProduction:
		return "🧵 Votre commande est en production"
	case models.OrderShipped:
		return "📦 Votre commande a été expédiée"
	case models.OrderDelivered:
		return "🎉 Votre commande a été livrée"
	case models.OrderCancelled:
		return "❌ Commande annulée"
	case models.OrderRefunded:
		return "💰 Remboursement effectué"
	default:
		return "📋 Mise à jour de votre commande"
	}
}

func statusMessage(status string) string {
	switch status {
	case models.OrderInProduction:
		return "Votre broderie est sur le métier."
	case models.OrderShipped:
		return "Votre colis est en route."
	case models.OrderDelivered:
		return "Votre colis a été livré. Merci pour votre confiance !"
	case models.OrderCancelled:
		return "Votre commande a été annulée."
	default:
		return "Le statut de votre commande a changé."
	}
}

// shortRef retourne les 8 premiers caractères de l'identifiant, en majuscules
func shortRef(o models.Order) string {
	return strings.ToUpper(o.ID.String()[:8])
}

// FormatCents formate un montant en euros à la française : 1234 → "12,34 €"
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d,%02d €", sign, cents/100, cents%100)
}

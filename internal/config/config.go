package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	AppEnv   string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	Port     string `mapstructure:"port"`

	JWTSecret      string   `mapstructure:"jwt_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	PublicBaseURL  string   `mapstructure:"public_base_url"`

	Redis   RedisConfig   `mapstructure:"redis"`
	Scylla  ScyllaConfig  `mapstructure:"scylla"`
	Elastic ElasticConfig `mapstructure:"elastic"`
	MinIO   MinIOConfig   `mapstructure:"minio"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Cart    CartConfig    `mapstructure:"cart"`
	Pricing PricingConfig `mapstructure:"pricing"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScyllaConfig ne doit pas être loggé (contient des mots de passe)
type ScyllaConfig struct {
	Hosts            []string      `mapstructure:"hosts"`
	ProductsKeyspace string        `mapstructure:"ks_products_keyspace"`
	ProductsRole     string        `mapstructure:"ks_products_role"`
	ProductsPassword string        `mapstructure:"ks_products_password"`
	OrdersKeyspace   string        `mapstructure:"ks_orders_keyspace"`
	OrdersRole       string        `mapstructure:"ks_orders_role"`
	OrdersPassword   string        `mapstructure:"ks_orders_password"`
	Timeout          time.Duration `mapstructure:"timeout"`
	NumConns         int           `mapstructure:"num_conns"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

type ElasticConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Index    string `mapstructure:"index"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type CartConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`
	MaxQuantity int           `mapstructure:"max_quantity"`
	MaxLines    int           `mapstructure:"max_lines"`
}

type PricingConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
}

var defaults = map[string]any{
	"app_env":         "production",
	"log_level":       "info",
	"port":            "8080",
	"jwt_secret":      "",
	"allowed_origins": []string{"http://localhost:5173"},
	"public_base_url": "http://localhost:5173",

	"redis.host":     "localhost:6379",
	"redis.password": "",
	"redis.db":       0,

	"scylla.hosts":                []string{"localhost"},
	"scylla.ks_products_keyspace": "",
	"scylla.ks_products_role":     "",
	"scylla.ks_products_password": "",
	"scylla.ks_orders_keyspace":   "",
	"scylla.ks_orders_role":       "",
	"scylla.ks_orders_password":   "",
	"scylla.timeout":              5 * time.Second,
	"scylla.num_conns":            20,
	"scylla.auto_migrate":         false,

	"elastic.url":      "http://localhost:9200",
	"elastic.user":     "",
	"elastic.password": "",
	"elastic.index":    "products",

	"minio.endpoint":   "localhost:9000",
	"minio.access_key": "",
	"minio.secret_key": "",
	"minio.use_ssl":    false,
	"minio.bucket":     "designs",

	"smtp.host":     "",
	"smtp.port":     587,
	"smtp.username": "",
	"smtp.password": "",
	"smtp.from":     "noreply@patchwork.local",

	"cart.ttl":          30 * 24 * time.Hour,
	"cart.max_quantity": 9999,
	"cart.max_lines":    50,

	"pricing.catalog_path": "",
}

// Load charge le .env (facultatif) puis les variables d'environnement.
// Les clés imbriquées se lisent en majuscules avec "_" : redis.host -> REDIS_HOST.
func Load(log *zap.SugaredLogger) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Info("⚠️ Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Info("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv construit la configuration à partir de l'environnement courant uniquement
func FromEnv() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.AllowedOrigins = splitList(cfg.AllowedOrigins)
	cfg.Scylla.Hosts = splitList(cfg.Scylla.Hosts)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate vérifie les valeurs sans lesquelles le serveur ne peut pas démarrer
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET manquant"))
	}
	if c.Scylla.ProductsKeyspace == "" {
		errs = append(errs, errors.New("SCYLLA_KS_PRODUCTS_KEYSPACE manquant"))
	}
	if c.Scylla.OrdersKeyspace == "" {
		errs = append(errs, errors.New("SCYLLA_KS_ORDERS_KEYSPACE manquant"))
	}
	if c.Cart.MaxQuantity < 1 || c.Cart.MaxLines < 1 {
		errs = append(errs, errors.New("limites du panier invalides"))
	}
	return errors.Join(errs...)
}

// IsDevelopment indique si le serveur tourne en mode développement
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// splitList accepte aussi bien "a,b" (variable d'env) qu'une vraie liste
func splitList(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

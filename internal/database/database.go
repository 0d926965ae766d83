package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"patchwork_back_end/internal/config"
)

// --- Configuration ScyllaDB ---
type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

type ScyllaManager struct {
	sessions map[string]*gocql.Session // keyspace → session
	configs  map[string]ScyllaKeyspaceConfig
	products string
	orders   string
	mu       sync.Mutex
	log      *zap.SugaredLogger
}

// Databases regroupe toutes les connexions ouvertes au démarrage
type Databases struct {
	Scylla  *ScyllaManager
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
}

// Connect ouvre ScyllaDB, Redis, Elasticsearch et MinIO. Scylla et Redis sont obligatoires ;
// Elasticsearch et MinIO sont facultatifs (la recherche et l'upload seront désactivés).
func Connect(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*Databases, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	d := &Databases{}

	// 1. ScyllaDB (multi-keyspaces)
	scylla, err := NewScyllaManager(cfg.Scylla, log)
	if err != nil {
		return nil, fmt.Errorf("échec initialisation ScyllaDB: %w", err)
	}
	d.Scylla = scylla

	if cfg.Scylla.AutoMigrate {
		if err := d.Scylla.EnsureSchema(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("échec création schéma: %w", err)
		}
	}

	// 2. Redis
	d.Redis, err = ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		d.Close()
		return nil, err
	}
	log.Info("✅ Connecté à Redis")

	// 3. Elasticsearch
	d.Elastic, err = connectElastic(cfg.Elastic)
	if err != nil {
		log.Warnf("⚠️ Elasticsearch indisponible, recherche désactivée: %v", err)
	} else {
		log.Info("✅ Connecté à Elasticsearch")
	}

	// 4. MinIO
	d.MinIO, err = connectMinIO(ctx, cfg.MinIO, log)
	if err != nil {
		log.Warnf("⚠️ MinIO indisponible, upload de designs désactivé: %v", err)
	}

	log.Info("✅ Toutes les bases de données sont connectées")
	return d, nil
}

// Close ferme les connexions ouvertes
func (d *Databases) Close() {
	if d.Scylla != nil {
		d.Scylla.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}

// =============================================
// SCYLLA DB (Multi-Keyspaces avec rôles)
// =============================================

func NewScyllaManager(cfg config.ScyllaConfig, log *zap.SugaredLogger) (*ScyllaManager, error) {
	sm := &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		configs:  loadScyllaConfigs(cfg),
		products: cfg.ProductsKeyspace,
		orders:   cfg.OrdersKeyspace,
		log:      log,
	}

	for keyspace := range sm.configs {
		if _, err := sm.GetSession(keyspace); err != nil {
			sm.Close()
			return nil, fmt.Errorf("échec initialisation keyspace %s: %w", keyspace, err)
		}
	}
	return sm, nil
}

func loadScyllaConfigs(cfg config.ScyllaConfig) map[string]ScyllaKeyspaceConfig {
	configs := make(map[string]ScyllaKeyspaceConfig)

	base := ScyllaKeyspaceConfig{
		Hosts:       cfg.Hosts,
		Timeout:     cfg.Timeout,
		NumConns:    cfg.NumConns,
		Consistency: gocql.Quorum,
	}

	// --- Keyspace Produits ---
	if ks := cfg.ProductsKeyspace; ks != "" {
		c := base
		c.Keyspace, c.Username, c.Password = ks, cfg.ProductsRole, cfg.ProductsPassword
		configs[ks] = c
	}

	// --- Keyspace Commandes ---
	if ks := cfg.OrdersKeyspace; ks != "" {
		c := base
		c.Keyspace, c.Username, c.Password = ks, cfg.OrdersRole, cfg.OrdersPassword
		configs[ks] = c
	}

	return configs
}

func createScyllaCluster(c ScyllaKeyspaceConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(c.Hosts...)
	cluster.Keyspace = c.Keyspace
	cluster.Consistency = c.Consistency
	cluster.Timeout = c.Timeout
	cluster.NumConns = c.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if c.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: c.Username,
			Password: c.Password,
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// GetSession retourne une session pour un keyspace donné, recréée si elle est fermée
func (sm *ScyllaManager) GetSession(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cfg, exists := sm.configs[keyspace]
	if !exists {
		return nil, fmt.Errorf("keyspace '%s' non configuré", keyspace)
	}

	if session, exists := sm.sessions[keyspace]; exists {
		if !session.Closed() {
			return session, nil
		}
		delete(sm.sessions, keyspace)
	}

	session, err := createScyllaCluster(cfg).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %w", keyspace, err)
	}

	sm.sessions[keyspace] = session
	sm.log.Infof("✅ Nouvelle session ScyllaDB pour keyspace '%s' (utilisateur: %s)", keyspace, cfg.Username)
	return session, nil
}

// ProductsSession retourne la session du keyspace produits
func (sm *ScyllaManager) ProductsSession() (*gocql.Session, error) {
	return sm.GetSession(sm.products)
}

// OrdersSession retourne la session du keyspace commandes
func (sm *ScyllaManager) OrdersSession() (*gocql.Session, error) {
	return sm.GetSession(sm.orders)
}

// Close ferme toutes les sessions ScyllaDB
func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for keyspace, session := range sm.sessions {
		session.Close()
		sm.log.Infof("🔌 Session ScyllaDB fermée pour keyspace '%s'", keyspace)
	}
	sm.sessions = make(map[string]*gocql.Session)
}

// =============================================
// REDIS
// =============================================

func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("erreur connexion Redis: %w", err)
	}
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================

func connectElastic(cfg config.ElasticConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur création client Elasticsearch: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("erreur connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("erreur connexion Elasticsearch: %s", res.Status())
	}

	return client, nil
}

// =============================================
// MINIO
// =============================================

func connectMinIO(ctx context.Context, cfg config.MinIOConfig, log *zap.SugaredLogger) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("erreur vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("erreur création bucket MinIO: %w", err)
		}
		log.Infof("🪣 Bucket créé : %s", cfg.Bucket)
	} else {
		log.Infof("🪣 Bucket MinIO déjà présent : %s", cfg.Bucket)
	}

	log.Infof("✅ Connecté à MinIO : %s", cfg.Endpoint)
	return client, nil
}

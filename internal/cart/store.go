package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"patchwork_back_end/internal/models"
)

const (
	DefaultTTL = 30 * 24 * time.Hour // 30 jours

	maxTxRetries = 5
)

// Store persiste les paniers dans Redis sous la clé cart:<userID>, une liste JSON de lignes.
// Les écritures passent par WATCH/MULTI : une écriture concurrente sur le même panier
// fait rejouer la transaction.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{redis: client, ttl: ttl}
}

func key(userID string) string { return "cart:" + userID }

// Load retourne les lignes du panier (vide si le panier n'existe pas)
func (s *Store) Load(ctx context.Context, userID string) ([]models.CartItem, error) {
	return load(ctx, s.redis, userID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, r getter, userID string) ([]models.CartItem, error) {
	data, err := r.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("décodage panier: %w", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// Update applique fn au panier courant et enregistre le résultat de façon atomique.
// Un panier résultant vide est supprimé. Si fn renvoie une erreur, rien n'est écrit.
func (s *Store) Update(ctx context.Context, userID string, fn func([]models.CartItem) ([]models.CartItem, error)) ([]models.CartItem, error) {
	k := key(userID)
	var result []models.CartItem

	txf := func(tx *redis.Tx) error {
		items, err := load(ctx, tx, userID)
		if err != nil {
			return err
		}
		updated, err := fn(items)
		if err != nil {
			return err
		}

		var data []byte
		if len(updated) > 0 {
			if data, err = json.Marshal(updated); err != nil {
				return fmt.Errorf("encodage panier: %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(updated) == 0 {
				pipe.Del(ctx, k)
			} else {
				pipe.Set(ctx, k, data, s.ttl)
			}
			return nil
		})
		if err != nil {
			return err
		}
		result = updated
		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.redis.Watch(ctx, txf, k)
		if err == nil {
			if result == nil {
				result = []models.CartItem{}
			}
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue // le panier a changé entre WATCH et EXEC
		}
		return nil, err
	}
	return nil, ErrConflict
}

// Clear supprime le panier
func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("suppression panier: %w", err)
	}
	return nil
}

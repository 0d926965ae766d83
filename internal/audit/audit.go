// Package audit enregistre les actions sensibles dans la table audit_logs.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/repository"
)

type Recorder struct {
	repo repository.AuditRepository
	log  *zap.SugaredLogger
}

func NewRecorder(repo repository.AuditRepository, log *zap.SugaredLogger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Record enregistre une action réussie. Une erreur d'écriture est seulement journalisée.
func (r *Recorder) Record(ctx context.Context, userID, action, resource, resourceID string, oldValue, newValue any) {
	r.write(ctx, models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   marshal(oldValue),
		NewValue:   marshal(newValue),
		Success:    true,
	})
}

// RecordFailure enregistre une action refusée ou échouée
func (r *Recorder) RecordFailure(ctx context.Context, userID, action, resource, resourceID, errorMsg string) {
	r.write(ctx, models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		NewValue:   errorMsg,
	})
}

func (r *Recorder) write(ctx context.Context, e models.AuditLog) {
	if r == nil || r.repo == nil {
		return
	}
	e.ID = gocql.TimeUUID()
	e.Timestamp = time.Now().UTC()

	// la requête a pu se terminer avant l'écriture
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := r.repo.InsertAudit(ctx, e); err != nil {
		r.log.Warnf("❌ Erreur enregistrement log audit %s: %v", e.Action, err)
	}
}

func marshal(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

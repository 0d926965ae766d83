package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	MaxDesignSize     = 10 << 20 // 10 Mo
	DesignURLLifetime = 15 * time.Minute
	designPrefix      = "designs/"
)

var (
	ErrStorageUnavailable = errors.New("stockage des designs indisponible")
	ErrDesignTooLarge     = errors.New("fichier trop volumineux (10 Mo maximum)")
	ErrDesignType         = errors.New("format non supporté (PNG, JPEG, SVG ou PDF)")
	ErrDesignEmpty        = errors.New("fichier vide")
)

// allowedDesignTypes associe les types acceptés à l'extension de l'objet stocké
var allowedDesignTypes = []struct {
	mime string
	ext  string
}{
	{"image/png", ".png"},
	{"image/jpeg", ".jpg"},
	{"image/svg+xml", ".svg"},
	{"application/pdf", ".pdf"},
}

// Designs stocke les fichiers de design envoyés par les clients dans MinIO,
// sous designs/<userID>/<uuid><ext>.
type Designs struct {
	client *minio.Client
	bucket string
	log    *zap.SugaredLogger
}

func NewDesigns(client *minio.Client, bucket string, log *zap.SugaredLogger) *Designs {
	return &Designs{client: client, bucket: bucket, log: log}
}

type UploadedDesign struct {
	Ref         string `json:"ref"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// Upload vérifie le type réel du fichier puis l'enregistre au nom de l'utilisateur
func (d *Designs) Upload(ctx context.Context, userID string, r io.Reader) (*UploadedDesign, error) {
	if d == nil || d.client == nil {
		return nil, ErrStorageUnavailable
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxDesignSize+1))
	if err != nil {
		return nil, fmt.Errorf("lecture fichier: %w", err)
	}
	if len(data) > MaxDesignSize {
		return nil, ErrDesignTooLarge
	}

	contentType, ext, err := DetectDesignType(data)
	if err != nil {
		return nil, err
	}

	ref := designPrefix + userID + "/" + uuid.NewString() + ext
	_, err = d.client.PutObject(ctx, d.bucket, ref, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("erreur upload MinIO: %w", err)
	}

	link, err := d.PresignedURL(ctx, ref)
	if err != nil {
		d.log.Warnf("⚠️ URL signée indisponible pour %s: %v", ref, err)
	}

	d.log.Infof("🎨 Design %s enregistré (%s, %d octets)", ref, contentType, len(data))
	return &UploadedDesign{Ref: ref, ContentType: contentType, Size: int64(len(data)), URL: link}, nil
}

// PresignedURL génère une URL de lecture temporaire pour un design
func (d *Designs) PresignedURL(ctx context.Context, ref string) (string, error) {
	if d == nil || d.client == nil {
		return "", ErrStorageUnavailable
	}
	u, err := d.client.PresignedGetObject(ctx, d.bucket, ref, DesignURLLifetime, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// OwnedBy indique si la référence désigne un design de cet utilisateur
func (d *Designs) OwnedBy(ref, userID string) bool {
	return DesignOwnedBy(ref, userID)
}

// OwnsDesign vérifie en plus que l'objet a bien été envoyé. Sans stockage, aucun
// design n'a pu l'être.
func (d *Designs) OwnsDesign(ctx context.Context, ref, userID string) bool {
	if !DesignOwnedBy(ref, userID) || d == nil || d.client == nil {
		return false
	}
	_, err := d.client.StatObject(ctx, d.bucket, ref, minio.StatObjectOptions{})
	if err == nil {
		return true
	}
	if minio.ToErrorResponse(err).Code != minio.NoSuchKey {
		d.log.Warnf("⚠️ Vérification du design %s impossible: %v", ref, err)
	}
	return false
}

func DesignOwnedBy(ref, userID string) bool {
	if userID == "" || strings.Contains(userID, "/") || strings.Contains(ref, "..") {
		return false
	}
	rest, ok := strings.CutPrefix(ref, designPrefix+userID+"/")
	return ok && rest != "" && !strings.Contains(rest, "/")
}

// DetectDesignType identifie le type d'après le contenu, pas d'après le nom du fichier
func DetectDesignType(data []byte) (contentType, ext string, err error) {
	if len(data) == 0 {
		return "", "", ErrDesignEmpty
	}
	mtype := mimetype.Detect(data)
	for _, t := range allowedDesignTypes {
		if mtype.Is(t.mime) {
			return t.mime, t.ext, nil
		}
	}
	return "", "", ErrDesignType
}

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New construit le logger du serveur. En développement la sortie est lisible en console,
// sinon JSON (production).
func New(level string, development bool) (*zap.SugaredLogger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, err
		}
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Nop retourne un logger silencieux, pratique pour les tests
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// NewOrFallback ne renvoie jamais nil : si la configuration demandée échoue, on
// retombe sur un logger console minimal qui signale l'erreur.
func NewOrFallback(level string, development bool) *zap.SugaredLogger {
	l, err := New(level, development)
	if err == nil {
		return l
	}
	fallback := zap.NewExample().Sugar()
	fallback.Warnf("⚠️ Logger %q indisponible, sortie minimale: %v", level, err)
	return fallback
}

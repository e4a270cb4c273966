package viewer

import (
	"github.com/pyhub-apps/pdfviewport-golang/pkg/config"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
)

// Option is a function that modifies session settings
type Option func(*settings)

type settings struct {
	cfg    config.Config
	logger observability.Logger
}

func defaultSettings() *settings {
	return &settings{
		cfg:    config.Default(),
		logger: observability.NopLogger{},
	}
}

// WithConfig replaces the default configuration
func WithConfig(cfg config.Config) Option {
	return func(s *settings) {
		s.cfg = cfg
	}
}

// WithLogger sets the logger shared by every component of the session
func WithLogger(logger observability.Logger) Option {
	return func(s *settings) {
		s.logger = observability.OrNop(logger)
	}
}

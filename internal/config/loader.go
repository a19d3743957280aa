package config

import (
	"context"

	"github.com/oakandvine/concierge-widget/pkg/logging"
)

// Fetcher retrieves the tenant branding payload.
type Fetcher interface {
	FetchWidgetConfig(ctx context.Context) (*Remote, error)
}

// Loader fetches tenant branding once at startup and falls back to
// defaults on any failure. A failed fetch never blocks the widget and
// never surfaces to the visitor.
type Loader struct {
	fetcher Fetcher
	logger  *logging.Logger
}

// NewLoader creates a config loader.
func NewLoader(fetcher Fetcher, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{fetcher: fetcher, logger: logger}
}

// Load returns the effective widget config and whether the remote
// payload was applied.
func (l *Loader) Load(ctx context.Context) (WidgetConfig, bool) {
	cfg := Default()
	if l.fetcher == nil {
		return cfg, false
	}

	remote, err := l.fetcher.FetchWidgetConfig(ctx)
	if err != nil {
		l.logger.Warn("config: remote fetch failed, keeping defaults", "error", err)
		return cfg, false
	}

	l.logger.Debug("config: remote branding applied", "business", remote.BusinessName)
	return cfg.Merge(remote), true
}

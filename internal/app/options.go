package app

import "github.com/evcraddock/realty/internal/config"

// Option configures Run.
type Option func(*application)

type application struct {
	config *config.Config
}

// WithConfig sets the server configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *application) { a.config = cfg }
}

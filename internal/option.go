package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput redirects structured logs. Stdio transports pass os.Stderr
// so stdout stays reserved for the protocol.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

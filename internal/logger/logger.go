package logger

import (
	"go.uber.org/zap"
)

// NewNamed builds a zap logger for the given environment and attaches the
// service name to every entry. Production gets JSON output at info level,
// everything else gets the human-readable development config.
func NewNamed(appEnv, service string) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if appEnv == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return l.Named(service), nil
}

package logger

import (
	"go.uber.org/zap"
)

// New builds the application logger: JSON output in production,
// human readable console output everywhere else
func New(env string) (*zap.Logger, error) {
	if IsProduction(env) {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// IsProduction reports whether env names the production environment
func IsProduction(env string) bool {
	return env == "production" || env == "prod"
}

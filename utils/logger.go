package utils

import (
	"strings"

	"go.uber.org/zap"
)

// InitLogger builds the application logger. mode is "prod"/"production" for
// JSON output, anything else gets the development console encoder.
func InitLogger(mode string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

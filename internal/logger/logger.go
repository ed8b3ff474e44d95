// Package logger builds the zap logger shared by the services and the CLI.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger for mode:
//
//	dev, development  console output at debug level
//	prod, production  JSON output at info level
//	quiet (default)   console output, warnings and errors only
//	off               discards everything
//
// All output goes to stderr so command output on stdout stays clean.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "dev", "development":
		cfg = zap.NewDevelopmentConfig()
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "", "quiet":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.DisableStacktrace = true
	case "off", "none":
		return zap.NewNop(), nil
	default:
		return nil, fmt.Errorf("unknown log mode %q (expected dev, prod, quiet or off)", mode)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

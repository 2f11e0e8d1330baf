package logger

import (
	"log"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	mu     sync.Mutex
)

// Init builds the process logger. Production gets JSON at info level,
// everything else a colored console logger at debug level.
func Init(appEnv string) *zap.Logger {
	var cfg zap.Config

	if appEnv == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	mu.Lock()
	global = l
	mu.Unlock()
	zap.ReplaceGlobals(l)

	return l
}

// Get returns the process logger, initialising a development logger on first use.
func Get() *zap.Logger {
	mu.Lock()
	l := global
	mu.Unlock()
	if l == nil {
		return Init("development")
	}
	return l
}

package main

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Logger      *zap.SugaredLogger
	AtomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() {
	if err := ConfigureLogger(); err != nil {
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}
}

// ConfigureLogger (re)builds Logger from LOG_LEVEL and LOG_FORMAT.
func ConfigureLogger() error {
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "INFO"
	}
	atomicLevel, err := zap.ParseAtomicLevel(logLevel)
	if err == nil {
		AtomicLevel.SetLevel(atomicLevel.Level())
	} else {
		AtomicLevel.SetLevel(zap.InfoLevel)
		log.Printf("failed to parse log level, fallback to INFO: %v", err)
	}
	encoding, ok := os.LookupEnv("LOG_FORMAT")
	if !ok || (encoding != "json" && encoding != "console") {
		encoding = "console"
	}

	logger, err := loggerConfig(encoding).Build()
	if err != nil {
		return err
	}
	Logger = logger.Sugar()
	return nil
}

func loggerConfig(encoding string) zap.Config {
	return zap.Config{
		Level:       AtomicLevel,
		Development: false,
		Encoding:    encoding,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "M",
			LevelKey:       "L",
			TimeKey:        "T",
			NameKey:        "N",
			CallerKey:      zapcore.OmitKey,
			FunctionKey:    zapcore.OmitKey,
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

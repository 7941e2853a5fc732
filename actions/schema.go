package actions

import (
	"context"
	"fmt"
	"io"
	"os"
)

type SchemaConfig struct {
	Tracking         TrackingConfig
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

// RunSchemaCreate creates the tracking tables if they do not exist.
func RunSchemaCreate(cfg *SchemaConfig) error {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	s, err := newProjectStore(newLogger(cfg.LogLevel, cfg.StackDumpOnPanic), &cfg.Tracking)
	if err != nil {
		return err
	}
	if err = s.EnsureSchema(context.Background()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cfg.Out, "Tracking tables are ready in connection %q\n", cfg.Tracking.TrackingConnection)
	return nil
}

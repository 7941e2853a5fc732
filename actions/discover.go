package actions

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DiscoverConfig is used by RunDiscover and RunDatabaseList.
type DiscoverConfig struct {
	Tracking         TrackingConfig
	Connection       string `errorTxt:"source connection" mandatory:"yes"`
	SourceDatabase   string
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

func (cfg *DiscoverConfig) out() io.Writer {
	if cfg.Out == nil {
		return os.Stdout
	}
	return cfg.Out
}

// RunDiscover prints the tables found in the source database, one per line, without registering them.
func RunDiscover(cfg *DiscoverConfig) error {
	s, err := newProjectStore(newLogger(cfg.LogLevel, cfg.StackDumpOnPanic), &cfg.Tracking)
	if err != nil {
		return err
	}
	t, err := s.Discover(context.Background(), cfg.Connection, cfg.SourceDatabase)
	if err != nil {
		return err
	}
	for _, v := range t {
		_, _ = fmt.Fprintln(cfg.out(), v)
	}
	return nil
}

// RunDatabaseList prints the databases visible to the connection, one per line.
func RunDatabaseList(cfg *DiscoverConfig) error {
	s, err := newProjectStore(newLogger(cfg.LogLevel, cfg.StackDumpOnPanic), &cfg.Tracking)
	if err != nil {
		return err
	}
	d, err := s.ListDatabases(context.Background(), cfg.Connection)
	if err != nil {
		return err
	}
	for _, v := range d {
		_, _ = fmt.Fprintln(cfg.out(), v)
	}
	return nil
}

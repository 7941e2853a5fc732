package actions

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/helper"
	"github.com/relloyd/ctadmin/tracking"
)

// SyncConfig is used by RunSync.
// Connection and SourceDatabase default to the project's source when they are empty.
type SyncConfig struct {
	Tracking         TrackingConfig
	ProjectId        string `errorTxt:"project id" mandatory:"yes"`
	Connection       string
	SourceDatabase   string
	OutputFormat     string // csv, yaml or json
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

// RunSync registers the tables of the source database under the project and writes all tables of the project to
// cfg.Out.
func RunSync(ctx context.Context, cfg *SyncConfig) (*tracking.SyncResult, error) {
	if cfg == nil {
		return nil, errors.New("nil pointer to sync config supplied")
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	s, err := newProjectStore(newLogger(cfg.LogLevel, cfg.StackDumpOnPanic), &cfg.Tracking)
	if err != nil {
		return nil, err
	}
	r, err := syncProject(ctx, s, cfg.ProjectId, cfg.Connection, cfg.SourceDatabase)
	if err != nil {
		return nil, err
	}
	switch cfg.OutputFormat {
	case "", "csv":
		err = writeCsv(cfg.Out, r.Columns(), r.Rows())
	default:
		err = writeOutput(r, cfg.Out, cfg.OutputFormat)
	}
	return r, err
}

// syncProject fills in a missing connection or database from the project before syncing.
func syncProject(ctx context.Context, s ProjectStore, projectId string, connection string, sourceDatabase string) (*tracking.SyncResult, error) {
	if projectId != "" && (connection == "" || sourceDatabase == "") {
		p, err := s.Get(ctx, projectId)
		if err != nil {
			return nil, errors.Wrap(err, "unable to find the source of the project, please supply a connection and source database")
		}
		if connection == "" {
			connection = p.SourceConnectionID
		}
		if sourceDatabase == "" {
			sourceDatabase = p.SourceDatabase
		}
	}
	return s.Sync(ctx, projectId, connection, sourceDatabase)
}

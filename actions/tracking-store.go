package actions

import (
	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/logger"
	"github.com/relloyd/ctadmin/tracking"
)

// TrackingConfig names the tracking store used by the project, sync and tables actions.
type TrackingConfig struct {
	Connections        tracking.ConnectionRegistry `errorTxt:"connection registry" mandatory:"yes"`
	TrackingConnection string                      `errorTxt:"tracking connection" mandatory:"yes"`
	ProjectsTable      string
	TablesTable        string
	Schema             string
	ExcludeViews       bool
	Prefix             string
	Rule               string
}

// newProjectStore builds a tracking.Store from cfg.
func newProjectStore(log logger.Logger, cfg *TrackingConfig) (ProjectStore, error) {
	if cfg == nil {
		return nil, errors.New("nil pointer to tracking config supplied")
	}
	s, err := tracking.NewStore(log, tracking.Config{
		Registry:           cfg.Connections,
		TrackingConnection: cfg.TrackingConnection,
		ProjectsTable:      cfg.ProjectsTable,
		TablesTable:        cfg.TablesTable,
		Discovery: tracking.DiscoveryOptions{
			Schema:       cfg.Schema,
			ExcludeViews: cfg.ExcludeViews,
			Prefix:       cfg.Prefix,
			Rule:         cfg.Rule,
		},
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newLogger returns the logger for a CLI action. The level defaults to error.
func newLogger(level string, stackDumpOnPanic bool) logger.Logger {
	if level == "" {
		level = "error"
	}
	return logger.NewLogger(constants.ServiceName, level, stackDumpOnPanic)
}

package actions

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/helper"
	"github.com/relloyd/ctadmin/tracking"
)

// TablesConfig is used by the tables actions.
// Changes is a list of field:value pairs, e.g. "load:false", applied to every table in Tables.
type TablesConfig struct {
	Tracking         TrackingConfig
	ProjectId        string
	Tables           []string
	Changes          string
	OutputFormat     string // csv, yaml or json
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

func (cfg *TablesConfig) setup() (ProjectStore, error) {
	if cfg == nil {
		return nil, errors.New("nil pointer to tables config supplied")
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return newProjectStore(newLogger(cfg.LogLevel, cfg.StackDumpOnPanic), &cfg.Tracking)
}

// RunTablesList writes the tracked tables of the project, or of all projects when no project is given.
func RunTablesList(cfg *TablesConfig) error {
	s, err := cfg.setup()
	if err != nil {
		return err
	}
	t, err := s.ListTables(context.Background(), cfg.ProjectId)
	if err != nil {
		return err
	}
	switch cfg.OutputFormat {
	case "", "csv":
		r := tracking.SyncResult{Tables: t}
		return writeCsv(cfg.Out, r.Columns(), r.Rows())
	default:
		return writeOutput(t, cfg.Out, cfg.OutputFormat)
	}
}

// RunTablesUpdate applies cfg.Changes to each table in cfg.Tables in a single transaction.
func RunTablesUpdate(cfg *TablesConfig) error {
	s, err := cfg.setup()
	if err != nil {
		return err
	}
	updates, err := changesToFieldUpdates(cfg.Tables, cfg.Changes)
	if err != nil {
		return err
	}
	if err = s.ApplyFieldUpdates(context.Background(), cfg.ProjectId, updates); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cfg.Out, "%v table(s) updated\n", len(cfg.Tables))
	return nil
}

// changesToFieldUpdates builds one update per table and field, keeping the order in which fields were given.
func changesToFieldUpdates(tables []string, changes string) ([]tracking.FieldUpdate, error) {
	om := helper.TokensToOrderedMap(changes)
	if len(tables) == 0 || om.Len() == 0 {
		return nil, &tracking.Error{Kind: tracking.ValidationError, Op: "update tables",
			Err: errors.New("please supply at least one table and one change of the form field:value")}
	}
	retval := make([]tracking.FieldUpdate, 0, len(tables)*om.Len())
	for _, t := range tables {
		iter := om.IterFunc()
		for kv, ok := iter(); ok; kv, ok = iter() {
			retval = append(retval, tracking.FieldUpdate{TableName: t, Field: kv.Key.(string), NewValue: kv.Value})
		}
	}
	return retval, nil
}

package actions

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relloyd/ctadmin/helper"
	"github.com/relloyd/ctadmin/rdbms"
)

type QueryConfig struct {
	Connections      ConnectionLoader
	SourceString     ConnectionObject
	Query            string `errorTxt:"SQL query" mandatory:"yes"`
	PrintHeader      bool
	DryRun           bool
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

// sqlHandler writes the query results to w as CSV.
type sqlHandler struct {
	printHeader bool
	w           *csv.Writer
}

func (s *sqlHandler) HandleHeader(i []interface{}) error {
	if s.printHeader {
		str := helper.InterfaceToString(i)
		err := s.w.Write(str)
		if err != nil {
			return fmt.Errorf("error outputting SQL header: %v", err)
		}
		s.w.Flush()
	}
	return nil
}

func (s *sqlHandler) HandleRow(i []interface{}) error {
	str := helper.InterfaceToString(i)
	err := s.w.Write(str)
	if err != nil {
		return fmt.Errorf("error outputting SQL row: %v", err)
	}
	s.w.Flush()
	return nil
}

func RunQuery(cfg *QueryConfig) error {
	var err error
	if err = helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.DryRun {
		_, _ = fmt.Fprintln(out, cfg.Query)
		return nil
	}
	log := newLogger(cfg.LogLevel, cfg.StackDumpOnPanic)
	// Connect to database.
	conn, err := cfg.Connections.LoadConnection(cfg.SourceString.GetConnectionName())
	if err != nil {
		return err
	}
	db, err := rdbms.OpenDbConnection(log, conn)
	if err != nil {
		return err
	}
	defer db.Close()
	// Create context.
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()
	h := sqlHandler{printHeader: cfg.PrintHeader, w: csv.NewWriter(out)}
	// Handle interrupts.
	chanQuit := make(chan os.Signal, 2)
	chanSql := make(chan error, 1)
	signal.Notify(chanQuit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(chanQuit)
	// Start the SQL.
	go func() {
		chanSql <- rdbms.SqlQuery(ctx, log, db, cfg.Query, &h)
	}()
	// Wait for SQL or interrupt.
	select {
	case <-chanQuit: // if we were interrupted...
		fmt.Println("\nUser abort. Stopping SQL execution...")
		cancelFn() // cancel the SQL.
		select {
		case <-time.After(5 * time.Second): // timeout.
			fmt.Println("Timeout waiting for SQL to end - aborted")
		case <-chanSql: // sql ended.
		}
		return nil
	case err = <-chanSql: // SQL ended.
	}
	return err
}

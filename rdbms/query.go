package rdbms

import (
	"context"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/logger"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

// SqlQuery executes sqltext using db and streams the column names followed by each row to the handler i.
func SqlQuery(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, i shared.SqlResultHandler) error {
	var err error
	var rows *shared.HpRows
	rows, err = db.QueryContext(ctx, sqltext)
	if err != nil {
		return errors.Wrapf(err, "error during database query using SQL: '%v'", sqltext)
	}
	defer func() {
		_ = rows.Close()
	}()
	// Set up column types for Scan(...)
	log.Debug("fetching column types...")
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return errors.Wrap(err, "error fetching column types")
	}
	for _, v := range colTypes {
		log.Debug("column scan type = ", v.ScanType())
	}
	// Scan the values dynamically.
	lenColTypes := len(colTypes)
	scanPtrs := make([]interface{}, lenColTypes, lenColTypes)
	scanVals := make([]interface{}, lenColTypes, lenColTypes)
	for idx := 0; idx < lenColTypes; idx++ { // for each column...
		scanPtrs[idx] = &scanVals[idx] // save the value.
	}
	// Build and send the header.
	header := make([]interface{}, lenColTypes, lenColTypes)
	for idx := range colTypes {
		header[idx] = colTypes[idx].Name()
	}
	err = i.HandleHeader(header)
	if err != nil {
		return err
	}
	// Send the rows via callback interface.
	for rows.Next() {
		select { // quit if asked to, else continue...
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		// Scan.
		err := rows.Scan(scanPtrs...)
		if err != nil {
			return errors.Wrap(err, "error scanning row")
		}
		// Make a new row.
		row := make([]interface{}, lenColTypes, lenColTypes)
		for idx := range scanVals { // for each value...
			row[idx] = scanVals[idx]
		}
		// Send the row.
		err = i.HandleRow(row)
		if err != nil {
			return err
		}
	}
	return rows.Err()
}

package shared

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
)

// HpConnection is a wrapper around the Go native sql.DB.
// It adds the Dialect interface for use by code that needs engine specific SQL.
type HpConnection struct {
	DbSql   *sql.DB
	Dialect Dialect
	DbType  string
}

// NewConnection returns a Connector for an already open db.
func NewConnection(db *sql.DB, d Dialect) *HpConnection {
	return &HpConnection{DbSql: db, Dialect: d, DbType: d.Name()}
}

// Connector:

func (c *HpConnection) Begin() (Transacter, error) {
	return c.BeginTx(context.Background())
}

func (c *HpConnection) BeginTx(ctx context.Context) (Transacter, error) {
	if c.DbSql == nil {
		return nil, errors.New("HpConnection was not configured correctly: DbSql is missing")
	}
	tx, err := c.DbSql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &HpTx{txSql: tx}, nil
}

func (c *HpConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

func (c *HpConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return c.DbSql.ExecContext(ctx, query, args...)
}

func (c *HpConnection) Query(query string, args ...interface{}) (*HpRows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *HpConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (*HpRows, error) {
	r, err := c.DbSql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &HpRows{rowsSql: r}, nil
}

func (c *HpConnection) Close() {
	if c.DbSql != nil {
		_ = c.DbSql.Close()
	}
}

func (c *HpConnection) GetDialect() Dialect {
	return c.Dialect
}

func (c *HpConnection) GetType() string {
	return c.DbType
}

// Transacter:

type HpTx struct {
	txSql *sql.Tx
}

func (t *HpTx) Exec(query string, args ...interface{}) (Result, error) {
	return t.ExecContext(context.Background(), query, args...)
}

func (t *HpTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return t.txSql.ExecContext(ctx, query, args...)
}

func (t *HpTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*HpRows, error) {
	r, err := t.txSql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &HpRows{rowsSql: r}, nil
}

func (t *HpTx) Commit() error {
	return t.txSql.Commit()
}

// Rollback returns nil if the transaction has already been committed or rolled back, so it is safe to defer.
func (t *HpTx) Rollback() error {
	err := t.txSql.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// Rows:

type HpRows struct {
	rowsSql *sql.Rows
}

func (r *HpRows) Close() error {
	return r.rowsSql.Close()
}

func (r *HpRows) Columns() ([]string, error) {
	return r.rowsSql.Columns()
}

func (r *HpRows) ColumnTypes() ([]*HpColumnType, error) {
	c, err := r.rowsSql.ColumnTypes()          // get the specific column types.
	x := make([]*HpColumnType, len(c), len(c)) // make a generic slice of *HpColumnType.
	for i, v := range c {                      // for each specific column type...
		x[i] = &HpColumnType{colTypeSql: v}
	}
	return x, err
}

func (r *HpRows) Err() error {
	return r.rowsSql.Err()
}

func (r *HpRows) Next() bool {
	return r.rowsSql.Next()
}

func (r *HpRows) Scan(dest ...interface{}) error {
	return r.rowsSql.Scan(dest...)
}

// ColumnType:

type HpColumnType struct {
	colTypeSql *sql.ColumnType
}

func (c *HpColumnType) DatabaseTypeName() string {
	return c.colTypeSql.DatabaseTypeName()
}

func (c *HpColumnType) Name() string {
	return c.colTypeSql.Name()
}

func (c *HpColumnType) ScanType() reflect.Type {
	return c.colTypeSql.ScanType()
}

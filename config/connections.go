package config

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

// LoadConnection returns the details saved for connectionName.
func (c *File) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	d := shared.ConnectionDetails{}
	if err := c.Get(connectionName, &d); err != nil { // if there was an error fetching the connection from config...
		return d, err
	}
	if d.LogicalName == "" {
		d.LogicalName = connectionName
	}
	return d, nil
}

// ListConnections returns the sorted names of connections whose type matches databaseType.
// See ConnectionTypeMatches.
func (c *File) ListConnections(databaseType string) ([]string, error) {
	keys, err := c.GetAllKeys()
	if err != nil {
		return nil, err
	}
	retval := make([]string, 0, len(keys))
	for _, k := range keys {
		d, err := c.LoadConnection(k)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading connection %q", k)
		}
		if ConnectionTypeMatches(d.Type, databaseType) {
			retval = append(retval, k)
		}
	}
	sort.Strings(retval)
	return retval, nil
}

// ConnectionTypeMatches returns true if connectionType contains the alias for databaseType.
// databaseType is a label such as MSSQL or PostgreSQL (see constants.DatabaseTypeAliases) or a raw type.
// An empty databaseType matches everything.
func ConnectionTypeMatches(connectionType string, databaseType string) bool {
	if databaseType == "" {
		return true
	}
	alias := strings.ToLower(databaseType)
	for label, a := range constants.DatabaseTypeAliases {
		if strings.EqualFold(label, databaseType) {
			alias = a
			break
		}
	}
	return strings.Contains(strings.ToLower(connectionType), alias)
}

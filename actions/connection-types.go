package actions

import (
	"sort"
	"strings"

	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/rdbms"
)

// connectionSchemes lists the DSN schemes accepted for each connection type.
var connectionSchemes = map[string][]string{
	constants.ConnectionTypeSqlServer: {"sqlserver", "mssql", "ms"},
	constants.ConnectionTypePostgres:  {"postgres", "postgresql", "pgsql", "pg"},
	constants.ConnectionTypeMySql:     {"mysql", "my", "mariadb", "maria"},
	constants.ConnectionTypeSqlite:    {"sqlite", "sqlite3", "sq", "file"},
}

// IsSupportedConnectionType returns true if connections of the given type can be opened.
func IsSupportedConnectionType(connectionType string) bool {
	_, err := rdbms.GetDialect(connectionType)
	return err == nil
}

// GetSupportedConnectionTypes returns a comma separated, sorted list of the connection types that can be opened.
func GetSupportedConnectionTypes() string {
	s := make([]string, 0, len(connectionSchemes))
	for k := range connectionSchemes {
		if IsSupportedConnectionType(k) {
			s = append(s, k)
		}
	}
	sort.Strings(s)
	return strings.Join(s, ", ")
}

// schemeMatchesConnectionType returns true if a DSN with the given scheme can be used for connectionType.
func schemeMatchesConnectionType(scheme string, connectionType string) bool {
	for _, s := range connectionSchemes[strings.ToLower(connectionType)] {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

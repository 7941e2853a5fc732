package shared

import (
	"fmt"
	"strings"

	"github.com/xo/dburl"
)

// ConnectionDetails is intended to hold credentials for a logical database connection.
type ConnectionDetails struct {
	Type        string            `json:"type" errorTxt:"database type" mandatory:"yes" yaml:"type"`
	LogicalName string            `json:"logicalName" errorTxt:"database logical name" mandatory:"yes" yaml:"logicalName"`
	Data        map[string]string `json:"data" yaml:"data"`
}

// String redacts passwords and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := make([]string, 0, len(c.Data)+1)
	x = append(x, fmt.Sprintf("  type = %v", c.Type))
	if v, ok := c.Data[DefaultDsnConnectionKeyNames.Dsn]; ok { // if there's a DSN...
		x = append(x, fmt.Sprintf("  dsn = %v", RedactDsn(v)))
	}
	for k, v := range c.Data {
		if k == DefaultDsnConnectionKeyNames.Dsn {
			continue
		}
		if k == "password" {
			v = "xxxxx"
		}
		x = append(x, fmt.Sprintf("  %v = %v", k, v))
	}
	return strings.Join(x, "\n")
}

// GetDsn returns the DSN saved in the connection data.
func (c ConnectionDetails) GetDsn() string {
	return c.Data[DefaultDsnConnectionKeyNames.Dsn]
}

// RedactDsn removes the password from dsn.
// If the DSN cannot be parsed then a fixed string is returned so that nothing sensitive is leaked.
func RedactDsn(dsn string) string {
	u, err := dburl.Parse(dsn)
	if err != nil {
		return "<unparsable dsn>"
	}
	return u.Redacted()
}

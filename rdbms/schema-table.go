package rdbms

import (
	"regexp"
	"strings"
)

var (
	reQuotedDottedTable  = regexp.MustCompile(`".+\..+"`)   // "random.table"
	reQuotedSchemaTable  = regexp.MustCompile(`".+"\.".+"`) // "schema"."table"
	reIdentifierNonWords = regexp.MustCompile(`[^A-Za-z0-9_]+`)
)

// SchemaTable holds a table name that may be qualified by a schema e.g. atk_ct.ct_projects.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<object>" mandatory:"yes"`
}

func NewSchemaTable(schema string, table string) SchemaTable {
	if schema == "" {
		return SchemaTable{table}
	}
	return SchemaTable{schema + "." + table}
}

// isQuotedTable returns true if the name is a quoted "random.table" rather than a "schema"."table".
func (st *SchemaTable) isQuotedTable() bool {
	return reQuotedDottedTable.MatchString(st.SchemaTable) && !reQuotedSchemaTable.MatchString(st.SchemaTable)
}

func (st *SchemaTable) split() (schema string, table string) {
	if st.isQuotedTable() {
		return "", st.SchemaTable
	}
	i := strings.Index(st.SchemaTable, ".")
	if i < 0 { // if we have just a table...
		return "", st.SchemaTable
	}
	return st.SchemaTable[:i], st.SchemaTable[i+1:]
}

func (st *SchemaTable) GetTable() string {
	_, t := st.split()
	return t
}

func (st *SchemaTable) GetSchema() string {
	s, _ := st.split()
	return s
}

// ConstraintName returns an unqualified name built from the table and suffix, suitable for naming
// a constraint or index that belongs to the table.
func (st *SchemaTable) ConstraintName(suffix string) string {
	return reIdentifierNonWords.ReplaceAllString(st.GetTable(), "") + suffix
}

func (st *SchemaTable) String() string {
	return st.SchemaTable
}

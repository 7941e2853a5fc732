package constants

const (
	EnvVarPrefix                  = "CT" // prefixed for environment variables in twelveFactorMode
	ServiceName                   = "ctadmin"
	ConnectionTypeSqlServer       = "sqlserver"
	ConnectionTypePostgres        = "postgres"
	ConnectionTypeMySql           = "mysql"
	ConnectionTypeSqlite          = "sqlite"
	ConnectionTypeExasol          = "exasol" // listed by the registry but not openable.
	DefaultTrackingConnectionName = "airflow_postgres"
	DefaultProjectsTable          = "ct_projects"
	DefaultTablesTable            = "ct_tables"
	DefaultSqlServerSchema        = "dbo"
	DefaultPostgresSchema         = "public"
	ProjectTypeOne                = 1
	ProjectTypeTwo                = 2
	TargetTypeOds                 = "ODS"
	TargetTypeHods                = "HODS"
	TrackedTableColumnLoad        = "load"
	TimeFormatSchedule            = "2006-01-02T15:04"
	OutputFormatYaml              = "yaml"
	OutputFormatJson              = "json"
)

// DatabaseTypeAliases maps the database type labels used by operators to the substring expected in a
// connection type. Connections are matched when their type contains the alias.
var DatabaseTypeAliases = map[string]string{
	"MSSQL":      "sqlserver",
	"PostgreSQL": "postgres",
	"Exasol":     "exasol",
	"MYSQL":      "mysql",
	"SQLite":     "sqlite",
}

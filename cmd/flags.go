package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/ctadmin/actions"
	"github.com/relloyd/ctadmin/config"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: error|warn|info|debug|trace"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Output format"},
	"dry-run": cliFlag{name: "dry-run", shortHand: "D",
		desc: "Print the SQL without executing it"},
	"print-header": cliFlag{name: "print-header", shortHand: "x",
		desc: "Print a header for SQL query results"},
	"connection-name": cliFlag{name: "connection-name", shortHand: "c",
		desc: "The logical connection name"},
	"dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "The connection DSN"},
	"force-connection": cliFlag{name: "force-connection", shortHand: "f",
		desc: "Overwrite an existing connection with the same name"},
	"database-type": cliFlag{name: "database-type", shortHand: "t",
		desc: "Only include connections of this database type, e.g. MSSQL, PostgreSQL, MYSQL, SQLite"},
	"project": cliFlag{name: "project", shortHand: "p",
		desc: "The change tracking project id"},
	"connection": cliFlag{name: "connection", shortHand: "c",
		desc: "The source connection to discover tables from.\n" +
			"Defaults to the project's source connection"},
	"source-database": cliFlag{name: "source-database", shortHand: "d",
		desc: "The source database to discover tables from.\n" +
			"Defaults to the project's source database"},
	"tables": cliFlag{name: "tables", shortHand: "T",
		desc: "Comma separated list of table names"},
	"changes": cliFlag{name: "changes", shortHand: "C",
		desc: "Comma separated list of <field>:<value> pairs to apply to each table, e.g. load:false"},
	"cascade": cliFlag{name: "cascade", shortHand: "",
		desc: "Also remove the tables tracked under the project"},
	"file": cliFlag{name: "file", shortHand: "f",
		desc: "File containing the project definition (.yaml or .json)"},
	"tracking-connection": cliFlag{name: "tracking-connection", shortHand: "k",
		desc: "The connection holding the change tracking tables"},
	"projects-table": cliFlag{name: "projects-table", shortHand: "",
		desc: "Table name used to store projects"},
	"tables-table": cliFlag{name: "tables-table", shortHand: "",
		desc: "Table name used to store tracked tables"},
	"schema": cliFlag{name: "schema", shortHand: "s",
		desc: "Only discover tables in this schema (defaults to dbo for SQL Server)"},
	"prefix": cliFlag{name: "prefix", shortHand: "P",
		desc: "Only discover tables whose name starts with this prefix (case insensitive)"},
	"exclude-views": cliFlag{name: "exclude-views", shortHand: "",
		desc: "Exclude views from discovery"},
	"rule": cliFlag{name: "rule", shortHand: "r",
		desc: "JsonLogic rule used to filter discovered tables.\n" +
			"Variables \"name\" and \"type\" are available, e.g. {\"!=\":[{\"var\":\"type\"},\"VIEW\"]}"},
	"port": cliFlag{name: "port", shortHand: "p",
		desc: "Port to listen on"},
	"ensure-schema": cliFlag{name: "ensure-schema", shortHand: "",
		desc: "Create the change tracking tables on startup if they don't exist"},
	"project-id": cliFlag{name: "project-id", shortHand: "i",
		desc: "The id of the project"},
	"source-connection": cliFlag{name: "source-connection", shortHand: "S",
		desc: "The connection of the project's source database"},
	"source-db": cliFlag{name: "source-db", shortHand: "d",
		desc: "The project's source database"},
	"biview-database": cliFlag{name: "biview-database", shortHand: "",
		desc: "The BI view database"},
	"project-type": cliFlag{name: "project-type", shortHand: "y",
		desc: "The project type (1 or 2)"},
	"ct-database": cliFlag{name: "ct-database", shortHand: "",
		desc: "The database holding the change tracking data"},
	"transfer-source-data": cliFlag{name: "transfer-source-data", shortHand: "",
		desc: "Transfer the source data to the target"},
	"target-connection": cliFlag{name: "target-connection", shortHand: "G",
		desc: "The connection of the project's target database"},
	"target-schema": cliFlag{name: "target-schema", shortHand: "",
		desc: "The target schema"},
	"target-type": cliFlag{name: "target-type", shortHand: "",
		desc: "The target type (ODS or HODS)"},
	"update-cron": cliFlag{name: "update-cron", shortHand: "",
		desc: "Cron expression of the update schedule, e.g. '30 6 * * *'"},
	"update-start": cliFlag{name: "update-start", shortHand: "",
		desc: "Start time of the update schedule in the format " + constants.TimeFormatSchedule},
	"transfer-cron": cliFlag{name: "transfer-cron", shortHand: "",
		desc: "Cron expression of the transfer schedule"},
	"transfer-start": cliFlag{name: "transfer-start", shortHand: "",
		desc: "Start time of the transfer schedule in the format " + constants.TimeFormatSchedule},
}

// addFlag add a flag to combra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from config if it exists else the supplied
// defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, config.Main.Get) // get the cliFlag details, with defaults taken from config or the supplied defaultValue
	desc := sw.desc + desc2                                 // create the full flag description for use below
	// Apply the flag.
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *bool:
		defaultBool := false
		if sw.val != "" {
			b, err := helper.ParseBool(sw.val)
			if err != nil {
				fmt.Printf("the value for flag %q must be a boolean: %v\n", sw.name, err)
				os.Exit(1)
			}
			defaultBool = b
		}
		if twelveFactorMode {
			*p = defaultBool
		} else {
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, defaultBool, desc)
			mustSetFlag(c.Flags(), sw.name, strconv.FormatBool(defaultBool))
		}
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *[]string:
		var defaultSlice []string
		if sw.val != "" {
			defaultSlice = helper.CsvToStringSliceTrimSpaces(sw.val)
		}
		if twelveFactorMode {
			*p = defaultSlice
		} else {
			c.Flags().StringSliceVarP(p, sw.name, sw.shortHand, defaultSlice, desc)
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode { // if the flag is required...
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the Main config file to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if err := helper.ReadValueFromEnv(flagNameToEnvVar(name), &s.val); err != nil { // if there's no value for the env var read into the switch val...
			// Apply the default.
			s.val = defaultValue
		}
	} else { // else check the config file or apply default...
		err := fnGetConfig(s.name, &s.val)
		if errors.As(err, &config.KeyNotFoundError{}) || s.val == "" { // if there was no key found...
			// Apply the default.
			s.val = defaultValue
		}
	}
	return s
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return constants.EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// addTrackingFlags adds the flags that locate the change tracking tables.
func addTrackingFlags(c *cobra.Command, t *actions.TrackingConfig) {
	switches.addFlag(c, &t.TrackingConnection, "tracking-connection", constants.DefaultTrackingConnectionName, false, "")
	switches.addFlag(c, &t.ProjectsTable, "projects-table", constants.DefaultProjectsTable, false, "")
	switches.addFlag(c, &t.TablesTable, "tables-table", constants.DefaultTablesTable, false, "")
}

// addDiscoveryFlags adds the flags that filter discovered tables.
func addDiscoveryFlags(c *cobra.Command, t *actions.TrackingConfig) {
	switches.addFlag(c, &t.Schema, "schema", "", false, "")
	switches.addFlag(c, &t.Prefix, "prefix", "", false, "")
	switches.addFlag(c, &t.ExcludeViews, "exclude-views", "false", false, "")
	switches.addFlag(c, &t.Rule, "rule", "", false, "")
}

// getConnectionArgsFunc returns a func that cobra uses to validate that we have 1 arg.
// It saves arg[0] into target.
func getConnectionArgsFunc(target *string, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			} else {
				return errors.New("requires a <connection>")
			}
		}
		*target = args[0]
		return nil
	}
}

// getQueryFromArgsFunc concatenates all args into a string.
// Returns an error if there are no args.
func getQueryFromArgsFunc(src *actions.ConnectionObject, query *string, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 { // if we are missing arguments...
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			} else {
				return errors.New("please supply a connection and a SQL query")
			}
		}
		src.ConnectionObject = args[0]
		// Build a new []string for the SQL; skip the connection in arg[0].
		q := make([]string, 0)
		for idx := 1; idx < len(args); idx++ { // for each piece of SQL...
			q = append(q, args[idx])
		}
		*query = strings.Join(q, " ")
		return nil
	}
}

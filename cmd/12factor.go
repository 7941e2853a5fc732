package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/actions"
	"github.com/relloyd/ctadmin/config"
	c "github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/helper"
	"github.com/relloyd/ctadmin/logger"
	"github.com/relloyd/ctadmin/rdbms/shared"
	"github.com/relloyd/ctadmin/tracking"
	"github.com/xo/dburl"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by ct's actions.
func init() {
	_ = loadEnvFile(helper.ReadValueFromEnvWithDefault(envVarEnvFile, defaultEnvFile))
	setupTwelveFactorMode()
}

// loadEnvFile adds the variables in fileName to the environment.
// Variables that are already set are not overwritten. A missing file is not an error.
func loadEnvFile(fileName string) error {
	if _, err := os.Stat(fileName); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(fileName)
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		if strings.ToLower(mode) == "lambda" {
			lambdaMode = true
		}
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envVarTwelveFactorMode = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarEnvFile          = c.EnvVarPrefix + "_" + "ENV_FILE"
	envVarCommand          = c.EnvVarPrefix + "_" + "COMMAND"
	envVarSubcommand       = c.EnvVarPrefix + "_" + "SUBCOMMAND"
	envVarConnection       = c.EnvVarPrefix + "_" + "CONNECTION"
	envVarLogLevel         = c.EnvVarPrefix + "_" + "LOG_LEVEL"
	envVarStackDump        = c.EnvVarPrefix + "_" + "STACK_DUMP"
	defaultEnvFile         = ".env"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var envVarTwelveFactorMode is set to "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand:    "",
		envVarSubcommand: "",
		envVarConnection: "",
		envVarLogLevel:   "",
		envVarStackDump:  "",
	}
)

type twelveFactorAction struct {
	setupFunc  func()
	runnerFunc func() error
}

// twelveFactorActions are keyed by <command>[-<subcommand>] and match the Cobra commands of the same name.
var twelveFactorActions = map[string]twelveFactorAction{
	"sync": {runnerFunc: runSync},
	"schema-create": {runnerFunc: func() error {
		schemaCfg.Tracking.Connections = getConnectionRegistry()
		schemaCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunSchemaCreate(&schemaCfg)
	}},
	"tables-list": {runnerFunc: func() error {
		tablesListCfg.Tracking.Connections = getConnectionRegistry()
		return actions.RunTablesList(&tablesListCfg)
	}},
	"tables-update": {runnerFunc: func() error {
		tablesUpdateCfg.Tracking.Connections = getConnectionRegistry()
		return actions.RunTablesUpdate(&tablesUpdateCfg)
	}},
	"project-list":   {runnerFunc: runProjectList},
	"project-get":    {runnerFunc: runProjectGet},
	"project-add":    {runnerFunc: runProjectAdd},
	"project-update": {runnerFunc: runProjectUpdate},
	"project-remove": {runnerFunc: runProjectDelete},
	"discover-tables": {
		setupFunc: func() {
			discoverTablesCfg.Connection = twelveFactorVars[envVarConnection]
		},
		runnerFunc: func() error {
			discoverTablesCfg.Tracking.Connections = getConnectionRegistry()
			return actions.RunDiscover(&discoverTablesCfg)
		},
	},
	"discover-databases": {
		setupFunc: func() {
			discoverDatabasesCfg.Connection = twelveFactorVars[envVarConnection]
		},
		runnerFunc: func() error {
			discoverDatabasesCfg.Tracking.Connections = getConnectionRegistry()
			return actions.RunDatabaseList(&discoverDatabasesCfg)
		},
	},
	"serve": {runnerFunc: func() error {
		serveConfig.Tracking.Connections = getConnectionRegistry()
		serveConfig.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunWebServer(&serveConfig)
	}},
}

func getConnectionRegistry() tracking.ConnectionRegistry {
	if twelveFactorMode {
		return &TwelveFactorConnections{}
	} else {
		return config.Connections
	}
}

func getConnectionLoader() actions.ConnectionLoader {
	if twelveFactorMode {
		return &TwelveFactorConnections{}
	} else {
		return config.Connections
	}
}

func getConnectionGetterSetter() actions.ConnectionGetterSetter {
	if twelveFactorMode {
		fmt.Printf("Error: connections cannot be configured when %v is set (supply them using %v and %v instead)\n",
			envVarTwelveFactorMode,
			helper.GetDsnEnvVarName("<connection-name>"),
			helper.GetTypeEnvVarName("<connection-name>"))
		os.Exit(1)
	}
	return config.Connections
}

// twelveFactorActionKey returns the key of the action in map twelveFactorActions.
func twelveFactorActionKey(command string, subcommand string) string {
	if subcommand == "" {
		return command
	}
	return fmt.Sprintf("%v-%v", command, subcommand)
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "warn") // fetch logLevel from env as this is not a persistent flag, given that we wanted different logging defaults per cobra action.
	if b, err := helper.ParseBool(os.Getenv(envVarStackDump)); err == nil {
		stackDumpOnPanic = b
	}
	log := logger.NewLogger(c.ServiceName, logLevel, stackDumpOnPanic)
	log.Info("ct is running in 12 Factor mode...")
	// Save values for the required variables.
	for k := range twelveFactorVars { // for each env variable that we need...
		twelveFactorVars[k] = os.Getenv(k)
		log.Debug(k, "=", twelveFactorVars[k])
	}
	// Use command and subcommand to fetch the appropriate action.
	key := twelveFactorActionKey(twelveFactorVars[envVarCommand], twelveFactorVars[envVarSubcommand])
	a, ok := acts[key]
	if !ok {
		err = fmt.Errorf("invalid combination of command (%v) and subcommand (%v)", twelveFactorVars[envVarCommand], twelveFactorVars[envVarSubcommand])
		log.Error(err.Error())
		return
	}
	if a.setupFunc != nil {
		a.setupFunc()
	}
	// Run the action.
	err = a.runnerFunc()
	if err != nil {
		log.Error("Error: ", err)
	}
	return err
}

// TwelveFactorConnections reads connections from the environment.
// Connection <name> is described by variables <prefix>_<NAME>_DSN and <prefix>_<NAME>_TYPE.
// It implements tracking.ConnectionRegistry and the connection interfaces in package actions.
type TwelveFactorConnections struct{}

// GetConnectionType returns the value of the type variable for connectionName.
func (t *TwelveFactorConnections) GetConnectionType(connectionName string) (connectionType string, err error) {
	k := helper.GetTypeEnvVarName(connectionName)
	if err = helper.ReadValueFromEnv(k, &connectionType); err != nil {
		return "", errors.Wrapf(err, "missing type for connection %q", connectionName)
	}
	return strings.ToLower(strings.TrimSpace(connectionType)), nil
}

// ListConnections returns the sorted names of connections found in the environment whose type matches
// databaseType. See config.ConnectionTypeMatches.
func (t *TwelveFactorConnections) ListConnections(databaseType string) ([]string, error) {
	retval := make([]string, 0)
	for _, kv := range os.Environ() {
		k := strings.SplitN(kv, "=", 2)[0]
		name, ok := helper.GetConnectionNameFromDsnEnvVar(k)
		if !ok {
			continue
		}
		typ, err := t.GetConnectionType(name)
		if err != nil { // if there's a DSN without a type...
			continue // skip it since it can't be opened.
		}
		if config.ConnectionTypeMatches(typ, databaseType) {
			retval = append(retval, name)
		}
	}
	sort.Strings(retval)
	return retval, nil
}

// LoadConnection loads the DSN and type of connectionName from the environment.
// This mimics loading connection details from the config file.
func (t *TwelveFactorConnections) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	var vDsn string
	kDsn := helper.GetDsnEnvVarName(connectionName)
	if err := helper.ReadValueFromEnv(kDsn, &vDsn); err != nil { // if we cannot find the DSN in the environment...
		return shared.ConnectionDetails{}, err
	}
	vType, err := t.GetConnectionType(connectionName)
	if err != nil {
		return shared.ConnectionDetails{}, err
	}
	if !actions.IsSupportedConnectionType(vType) {
		return shared.ConnectionDetails{}, fmt.Errorf("unsupported connection type %q for connection %q", vType, connectionName)
	}
	if _, err = dburl.Parse(vDsn); err != nil { // if the DSN was invalid...
		return shared.ConnectionDetails{}, errors.Wrapf(err, "invalid DSN in %v", kDsn)
	}
	m := make(map[string]string)
	return shared.ConnectionDetails{
		Type:        vType,
		LogicalName: connectionName,
		Data:        shared.DsnConnectionDetailsToMap(m, &shared.DsnConnectionDetails{Dsn: vDsn}),
	}, nil
}

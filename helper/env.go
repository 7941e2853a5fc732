package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/ctadmin/constants"
)

// ReadValueFromEnv will read the environment variable name and populate the supplied val.
// If the env var is not set then return an error.
func ReadValueFromEnv(name string, val *string) error {
	v := os.Getenv(name)
	if v != "" { // if the environment variable was set...
		*val = v // update the callers value
		return nil
	}
	return fmt.Errorf("value for environment variable %v not found", name)
}

// ReadValueFromEnvWithDefault will read the value of name from the environment into v.
// If it's not set then it will apply the supplied defaultValue and return v.
func ReadValueFromEnvWithDefault(name string, defaultValue string) (v string) {
	_ = ReadValueFromEnv(name, &v)
	if v == "" && defaultValue != "" { // if the environment variable is not set and we have been given a default value...
		v = defaultValue
	}
	return
}

// GetDsnEnvVarName returns the name of the variable holding the DSN for connectionName e.g. CT_SOURCE_DSN.
func GetDsnEnvVarName(connectionName string) string {
	return getConnectionEnvVarName(connectionName, "DSN")
}

// GetTypeEnvVarName returns the name of the variable holding the connection type for connectionName.
func GetTypeEnvVarName(connectionName string) string {
	return getConnectionEnvVarName(connectionName, "TYPE")
}

// GetConnectionNameFromDsnEnvVar is the reverse of GetDsnEnvVarName.
// It returns false if k is not the name of a DSN variable.
func GetConnectionNameFromDsnEnvVar(k string) (string, bool) {
	prefix := constants.EnvVarPrefix + "_"
	suffix := "_DSN"
	if !strings.HasPrefix(k, prefix) || !strings.HasSuffix(k, suffix) || len(k) <= len(prefix)+len(suffix) {
		return "", false
	}
	return strings.ToLower(k[len(prefix) : len(k)-len(suffix)]), true
}

func getConnectionEnvVarName(connectionName string, suffix string) string {
	n := strings.TrimSpace(strings.ToUpper(connectionName))
	n = strings.NewReplacer("-", "_", ".", "_").Replace(n)
	return fmt.Sprintf("%v_%v_%v", constants.EnvVarPrefix, n, suffix)
}

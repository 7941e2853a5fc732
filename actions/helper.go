package actions

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"regexp"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/helper"
)

var reFileSuffix = regexp.MustCompile(`.*\.(json|yaml|yml)$`)

// writeOutput marshals i as YAML or JSON and writes it to f.
func writeOutput(i interface{}, f io.Writer, yamlOrJson string) error {
	var err error
	var data []byte
	switch strings.ToLower(yamlOrJson) {
	case constants.OutputFormatYaml:
		data, err = yaml.Marshal(i)
	case constants.OutputFormatJson:
		data, err = json.MarshalIndent(i, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported output format %q", yamlOrJson)
	}
	if err != nil {
		return fmt.Errorf("unable to marshal output: %v", err)
	}
	_, err = f.Write(data)
	return err
}

// writeCsv writes the header followed by rows to f.
func writeCsv(f io.Writer, header []string, rows [][]interface{}) error {
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("error writing header: %v", err)
	}
	for _, r := range rows {
		if err := w.Write(helper.InterfaceToString(r)); err != nil {
			return fmt.Errorf("error writing row: %v", err)
		}
	}
	w.Flush()
	return w.Error()
}

// unmarshalFile reads a .json or .yaml file into out.
// YAML is converted to JSON first so that the json struct tags apply to both.
func unmarshalFile(fileName string, out interface{}) error {
	raw, err := ioutil.ReadFile(fileName)
	if err != nil {
		return err
	}
	// Check file extension YAML or JSON.
	suffix := reFileSuffix.ReplaceAllString(strings.ToLower(fileName), `$1`)
	switch suffix {
	case "json":
		err = json.Unmarshal(raw, out)
		if err != nil {
			return fmt.Errorf("error reading JSON: unmarshal errors: %v", err)
		}
	case "yaml", "yml":
		j, err := yaml.YAMLToJSON(raw) // http://ghodss.com/2014/the-right-way-to-handle-yaml-in-golang/
		if err != nil {
			return err
		}
		err = json.Unmarshal(j, out)
		if err != nil {
			return fmt.Errorf("error reading YAML after conversion to JSON: unmarshal errors: %v", err)
		}
	default:
		return fmt.Errorf("unable to identify type of file %q by its extension. Please use .yaml or .json", fileName)
	}
	return nil
}

func getPrintLogFunc(w io.Writer) func(format string, a ...interface{}) {
	return func(format string, a ...interface{}) {
		_, _ = fmt.Fprintf(w, format+"\n", a...)
	}
}

package helper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cevaris/ordered_map"
)

// Convert a string of the form, 'k1:v1,k2:v2' into an ordered map and return a pointer to it.
// 1) Split on comma to find each key:value pair.
// 2) Split on the first colon to separate the key from the value, so values may contain colons.
// Surrounding spaces are trimmed from keys and values.
func TokensToOrderedMap(s string) *ordered_map.OrderedMap {
	o := ordered_map.NewOrderedMap()
	if strings.TrimSpace(s) == "" {
		return o
	}
	tokens := strings.Split(s, ",")
	for idx := range tokens {
		k, v := Split(tokens[idx], ":")
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		o.Set(k, strings.TrimSpace(v)) // set key, value
	}
	return o
}

// Convert a string of the form, 'f1,f2,f3...' into a slice of string values.
// 1) Split on comma.
// 2) Remove leading and trailing spaces.
// Empty values are dropped.
func CsvToStringSliceTrimSpaces(s string) []string {
	retval := make([]string, 0)
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			retval = append(retval, v)
		}
	}
	return retval
}

// ParseBool converts the common representations of a boolean found in HTML forms, JSON and
// database drivers into a bool.
// Supported inputs: bool, integers 0|1, float64 0|1 (JSON numbers) and strings accepted by strconv.ParseBool
// plus yes|no|on|off.
func ParseBool(v interface{}) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int:
		return intToBool(int64(x))
	case int64:
		return intToBool(x)
	case float64:
		if x == float64(int64(x)) {
			return intToBool(int64(x))
		}
	case []uint8:
		return ParseBool(string(x))
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "on", "y":
			return true, nil
		case "no", "off", "n":
			return false, nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err == nil {
			return b, nil
		}
	}
	return false, fmt.Errorf("unable to convert %v (%T) to a boolean", v, v)
}

func intToBool(i int64) (bool, error) {
	switch i {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("unable to convert %v to a boolean", i)
}

// Maybe s is of the form t c u.
// If so, return  t, u.
// If not, return s, "".
func Split(s string, c string) (string, string) {
	i := strings.Index(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

func InterfaceToString(src []interface{}) []string {
	retval := make([]string, len(src), len(src))
	for i, v := range src {
		switch x := v.(type) {
		case float64:
			xInt := int(x)
			xFloat := float64(xInt) // truncate the float.
			if x == xFloat {        // if we can treat this as an integer...
				retval[i] = fmt.Sprint(xInt)
			} else { // else we have an exponent...
				retval[i] = strconv.FormatFloat(x, 'g', -1, 64)
			}
		case []uint8: // some drivers return text columns as bytes.
			retval[i] = string(x)
		case nil:
			retval[i] = ""
		default:
			retval[i] = fmt.Sprint(v)
		}
	}
	return retval
}

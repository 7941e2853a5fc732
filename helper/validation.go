package helper

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidateStructIsPopulated will check if any mandatory fields in cfg are missing.
// It uses struct tags to determine which fields are mandatory and the error text to fetch.
// The error text returned is just a list of the struct tags with key "errorTxt".
func ValidateStructIsPopulated(cfg interface{}) (err error) {
	errs := GetStructErrorTxt4UnsetFields(cfg)
	if len(errs) > 0 {
		err = fmt.Errorf("please supply values for %v", strings.Join(errs, ", "))
	}
	return
}

// GetStructErrorTxt4UnsetFields will reflect over interface i and build a slice containing error text strings for any
// struct fields that are unset i.e. are the zero value for the given field type.
// The error text strings are fetched from the errorTxt tags values found in the supplied interface (struct)
// where tag mandatory:"yes" is set.
// Strings containing only white space count as unset.
// Nil pointers to structs are skipped, so optional nested structs can be modelled as pointers.
func GetStructErrorTxt4UnsetFields(i interface{}) []string {
	errTags := make([]string, 0)
	getStructErrorTxt4UnsetFields(reflect.ValueOf(i), &errTags)
	return errTags
}

func getStructErrorTxt4UnsetFields(val reflect.Value, errTags *[]string) {
	for val.Kind() == reflect.Ptr || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}
	typ := val.Type()
	for idx := 0; idx < val.NumField(); idx++ { // for each field in the value/struct...
		f := val.Field(idx)
		sf := typ.Field(idx)
		if sf.PkgPath != "" { // if the field is not exported...
			continue
		}
		switch f.Kind() {
		case reflect.Struct, reflect.Ptr: // if we are looking at a nested struct and need to go down another level...
			getStructErrorTxt4UnsetFields(f, errTags)
		case reflect.Map:
			for _, k := range f.MapKeys() { // for each map key...
				getStructErrorTxt4UnsetFields(f.MapIndex(k), errTags) // descend deeper.
			}
		case reflect.Slice:
		default: // extract tags from this struct field...
			if sf.Tag.Get("mandatory") != "yes" {
				continue
			}
			unset := f.IsZero()
			if f.Kind() == reflect.String && strings.TrimSpace(f.String()) == "" {
				unset = true
			}
			if unset { // if the field is its zero value and it is mandatory...
				*errTags = append(*errTags, sf.Tag.Get("errorTxt"))
			}
		}
	}
}

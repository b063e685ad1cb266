package utils

import (
	"fmt"
	"reflect"
)

// ColumnList returns the list of "db" struct tags of T, usable as a squirrel
// select list. An optional prefix produces "prefix.column" names for joins.
func ColumnList[T any](prefix ...string) []string {
	var model T
	t := reflect.TypeOf(model)

	columns := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("db")
		if !ok || tag == "-" {
			continue
		}
		if len(prefix) > 0 {
			tag = fmt.Sprintf("%s.%s", prefix[0], tag)
		}
		columns = append(columns, tag)
	}
	return columns
}

package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT from the db-tagged exported fields of model.
// A field tagged `db:"col,default"` is left out while it holds its zero value
// so the column DEFAULT applies.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	fields, err := modelFields(model)
	if err != nil {
		return "", nil, fmt.Errorf("insert into %s: %w", table, err)
	}

	b := InsertInto(table).Suffix(suffix)
	cols := make([]string, 0, len(fields))
	vals := make([]any, 0, len(fields))
	for _, f := range fields {
		if f.useDefault && f.value.IsZero() {
			continue
		}
		cols = append(cols, f.column)
		vals = append(vals, f.value.Interface())
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("insert into %s: every column left to its default", table)
	}
	return b.Columns(cols...).Values(vals...).ToSQL()
}

type modelField struct {
	column     string
	useDefault bool
	value      reflect.Value
}

func modelFields(model any) ([]modelField, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	fields := make([]modelField, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, opts, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		f := modelField{column: col, value: value.Field(i)}
		for opt := range strings.SplitSeq(opts, ",") {
			if strings.TrimSpace(opt) == "default" {
				f.useDefault = true
			}
		}
		fields = append(fields, f)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("model has no db columns")
	}
	return fields, nil
}

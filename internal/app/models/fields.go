package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/yigit/hackfest/internal/pkg/apperrors"
)

// FieldSpec describes one addressable value of a Registration.
type FieldSpec struct {
	Path    string       `json:"path"`
	Label   string       `json:"label"`
	Rule    string       `json:"rule"`
	Message string       `json:"message"`
	Kind    reflect.Kind `json:"-"`

	index []int
}

// Type returns the JSON type name of the field value.
func (f FieldSpec) Type() string {
	if f.Kind == reflect.Bool {
		return "boolean"
	}
	return "string"
}

var (
	fieldSpecs []FieldSpec
	fieldIndex map[string]FieldSpec
)

func init() {
	fieldSpecs = collectFields(reflect.TypeOf(Registration{}), "", nil)
	fieldIndex = make(map[string]FieldSpec, len(fieldSpecs))
	for _, f := range fieldSpecs {
		fieldIndex[f.Path] = f
	}
}

func collectFields(t reflect.Type, prefix string, parent []int) []FieldSpec {
	var specs []FieldSpec
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := JSONName(sf)
		if name == "" {
			continue
		}
		index := append(append([]int{}, parent...), i)

		if sf.Type.Kind() == reflect.Struct {
			specs = append(specs, collectFields(sf.Type, prefix+name+".", index)...)
			continue
		}

		specs = append(specs, FieldSpec{
			Path:    prefix + name,
			Label:   sf.Tag.Get("label"),
			Rule:    sf.Tag.Get("validate"),
			Message: sf.Tag.Get("msg"),
			Kind:    sf.Type.Kind(),
			index:   index,
		})
	}
	return specs
}

// JSONName returns the JSON key of a struct field, or "" when the field is skipped.
func JSONName(sf reflect.StructField) string {
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

// FieldPaths lists every field path in form order.
func FieldPaths() []string {
	paths := make([]string, 0, len(fieldSpecs))
	for _, f := range fieldSpecs {
		paths = append(paths, f.Path)
	}
	return paths
}

// FieldSpecs returns the field table in form order.
func FieldSpecs() []FieldSpec {
	return append([]FieldSpec(nil), fieldSpecs...)
}

// LookupField returns the field description for a dotted path.
func LookupField(path string) (FieldSpec, bool) {
	f, ok := fieldIndex[path]
	return f, ok
}

// CheckFieldValue verifies that value can be stored at path.
func CheckFieldValue(path string, value any) (FieldSpec, error) {
	spec, ok := fieldIndex[path]
	if !ok {
		return FieldSpec{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownField, path)
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() || v.Kind() != spec.Kind {
		return FieldSpec{}, fmt.Errorf("%w: %s expects a %s", apperrors.ErrFieldType, path, spec.Type())
	}
	return spec, nil
}

// With returns a copy of r with the value at path replaced.
func (r Registration) With(path string, value any) (Registration, error) {
	spec, err := CheckFieldValue(path, value)
	if err != nil {
		return r, err
	}

	next := r
	target := reflect.ValueOf(&next).Elem().FieldByIndex(spec.index)
	target.Set(reflect.ValueOf(value).Convert(target.Type()))
	return next, nil
}

// Get returns the value stored at path.
func (r Registration) Get(path string) (any, error) {
	spec, ok := fieldIndex[path]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownField, path)
	}
	return reflect.ValueOf(r).FieldByIndex(spec.index).Interface(), nil
}

package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Kind classifies how a field is updated.
type Kind int

const (
	KindText Kind = iota
	KindEnum
	KindMulti
	KindData
	KindProvenance
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindEnum:
		return "enum"
	case KindMulti:
		return "multi"
	case KindData:
		return "data"
	case KindProvenance:
		return "provenance"
	default:
		return "unknown"
	}
}

// Field describes one questionnaire field.
type Field struct {
	Name    string   `json:"name"`
	Kind    Kind     `json:"-"`
	KindTag string   `json:"kind"`
	Numeric bool     `json:"numeric,omitempty"`
	Options []string `json:"options,omitempty"`

	index int
	typ   reflect.Type
}

var (
	ErrUnknownField  = errors.New("unknown form field")
	ErrNotSettable   = errors.New("field cannot be set directly")
	ErrInvalidOption = errors.New("value is not an allowed option")
)

type fieldRegistry struct {
	list   []Field
	byName map[string]int
}

var registry = buildRegistry()

func buildRegistry() fieldRegistry {
	t := reflect.TypeOf(Form{})
	r := fieldRegistry{byName: make(map[string]int, t.NumField())}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fd := Field{Name: name, index: i, typ: sf.Type, Numeric: sf.Tag.Get("form") == "numeric"}
		switch {
		case name == "autoFilledFields":
			fd.Kind = KindProvenance
		case sf.Type.Kind() == reflect.Ptr:
			fd.Kind = KindData
		case sf.Type.Kind() == reflect.Slice:
			fd.Kind = KindMulti
			fd.Options = Options(sf.Type.Elem())
		case Options(sf.Type) != nil:
			fd.Kind = KindEnum
			fd.Options = Options(sf.Type)
		default:
			fd.Kind = KindText
		}
		fd.KindTag = fd.Kind.String()
		r.byName[name] = len(r.list)
		r.list = append(r.list, fd)
	}
	return r
}

// Fields returns every field in declaration order.
func Fields() []Field {
	return slices.Clone(registry.list)
}

// Lookup returns the field with the given JSON name.
func Lookup(name string) (Field, bool) {
	i, ok := registry.byName[name]
	if !ok {
		return Field{}, false
	}
	return registry.list[i], true
}

// NumericFields returns the names of the fields that must hold a
// non-negative number when answered.
func NumericFields() []string {
	var out []string
	for _, fd := range registry.list {
		if fd.Numeric {
			out = append(out, fd.Name)
		}
	}
	return out
}

// Text returns the value of a scalar field as a string. Multi-select and
// data fields yield "".
func (f *Form) Text(name string) string {
	fd, ok := Lookup(name)
	if !ok || (fd.Kind != KindText && fd.Kind != KindEnum) {
		return ""
	}
	return reflect.ValueOf(f).Elem().Field(fd.index).String()
}

// Values returns the selected values of a multi-select field.
func (f *Form) Values(name string) []string {
	fd, ok := Lookup(name)
	if !ok || fd.Kind != KindMulti {
		return nil
	}
	sv := reflect.ValueOf(f).Elem().Field(fd.index)
	out := make([]string, sv.Len())
	for i := range out {
		out[i] = sv.Index(i).String()
	}
	return out
}

// Set applies a single-field update. Scalars are overwritten; for
// multi-select fields a value already present is removed and an absent
// value is appended.
func (f *Form) Set(name, value string) error {
	fd, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	fv := reflect.ValueOf(f).Elem().Field(fd.index)
	switch fd.Kind {
	case KindText:
		fv.SetString(value)
	case KindEnum:
		if !validOption(fd.typ, value) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidOption, name, value)
		}
		fv.SetString(value)
	case KindMulti:
		if fd.Options != nil && !validOption(fd.typ.Elem(), value) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidOption, name, value)
		}
		fv.Set(toggle(fv, value))
	default:
		return fmt.Errorf("%w: %s", ErrNotSettable, name)
	}
	return nil
}

func toggle(sv reflect.Value, value string) reflect.Value {
	out := reflect.MakeSlice(sv.Type(), 0, sv.Len()+1)
	found := false
	for i := 0; i < sv.Len(); i++ {
		if sv.Index(i).String() == value {
			found = true
			continue
		}
		out = reflect.Append(out, sv.Index(i))
	}
	if !found {
		item := reflect.New(sv.Type().Elem()).Elem()
		item.SetString(value)
		out = reflect.Append(out, item)
	}
	return out
}

// Patch is a bulk update keyed by field name.
type Patch map[string]json.RawMessage

// Put encodes v as the new value of field name.
func (p Patch) Put(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	p[name] = raw
	return nil
}

// Merge overwrites every field named in patch (no toggling) and adds
// autoFilled to the provenance list without duplicates. The update is
// applied atomically: on error f is left untouched.
func (f *Form) Merge(patch Patch, autoFilled []string) error {
	next := f.Clone()
	v := reflect.ValueOf(next).Elem()
	for name, raw := range patch {
		fd, ok := Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if fd.Kind == KindProvenance {
			return fmt.Errorf("%w: %s", ErrNotSettable, name)
		}
		fv := v.Field(fd.index)
		target := reflect.New(fd.typ)
		if err := json.Unmarshal(raw, target.Interface()); err != nil {
			return fmt.Errorf("decoding %s: %w", name, err)
		}
		if err := checkOptions(fd, target.Elem()); err != nil {
			return err
		}
		fv.Set(target.Elem())
	}
	for _, name := range autoFilled {
		if _, ok := Lookup(name); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if !slices.Contains(next.AutoFilledFields, name) {
			next.AutoFilledFields = append(next.AutoFilledFields, name)
		}
	}
	*f = *next
	return nil
}

func checkOptions(fd Field, v reflect.Value) error {
	switch fd.Kind {
	case KindEnum:
		if !validOption(fd.typ, v.String()) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidOption, fd.Name, v.String())
		}
	case KindMulti:
		if fd.Options == nil {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if !validOption(fd.typ.Elem(), v.Index(i).String()) {
				return fmt.Errorf("%w: %s=%q", ErrInvalidOption, fd.Name, v.Index(i).String())
			}
		}
	}
	return nil
}

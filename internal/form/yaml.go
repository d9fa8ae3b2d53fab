package form

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PatchFromYAML reads a questionnaire answer file. Keys are field names.
// Scalars are taken as text, so `propertyAge: 35` and `propertyAge: "35"`
// are the same answer. Lists fill multi-select fields and mappings fill
// data fields.
func PatchFromYAML(data []byte) (Patch, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing answers: %w", err)
	}
	p := Patch{}
	for name, v := range raw {
		fd, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if err := p.Put(name, yamlValue(fd, v)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func yamlValue(fd Field, v any) any {
	switch fd.Kind {
	case KindText, KindEnum:
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	case KindMulti:
		list, ok := v.([]any)
		if !ok {
			if v == nil {
				return []string{}
			}
			return []string{fmt.Sprint(v)}
		}
		out := make([]string, len(list))
		for i, item := range list {
			out[i] = fmt.Sprint(item)
		}
		return out
	}
	return v
}

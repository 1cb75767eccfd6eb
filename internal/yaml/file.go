package yaml

import (
	"errors"
	"os"

	"gopkg.in/yaml.v2"
)

// WriteFile serializes v to a file with the given name.
func WriteFile(name string, v interface{}, perm os.FileMode) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	return os.WriteFile(name, b, perm)
}

// ReadFile decodes the YAML file name into v.
func ReadFile(name string, v interface{}) error {
	b, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(b, v)
}

// ReadMap decodes the YAML file name into a map that can be serialized as JSON, i.e. all nested maps are keyed by
// strings.
func ReadMap(name string) (map[string]interface{}, error) {
	var raw interface{}
	if err := ReadFile(name, &raw); err != nil {
		return nil, err
	}

	val, err := ToStringKeys(raw)
	if err != nil {
		return nil, err
	}

	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, errors.New("top level element is not a map")
	}
	return m, nil
}

// ToStringKeys converts the map[interface{}]interface{} values produced by the YAML decoder into
// map[string]interface{}, recursively.
func ToStringKeys(val interface{}) (interface{}, error) {
	var err error
	switch val := val.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{})
		for k, v := range val {
			k, ok := k.(string)
			if !ok {
				return nil, errors.New("found non-string key")
			}
			m[k], err = ToStringKeys(v)
			if err != nil {
				return nil, err
			}
		}
		return m, nil
	case []interface{}:
		var l = make([]interface{}, len(val))
		for i, v := range val {
			l[i], err = ToStringKeys(v)
			if err != nil {
				return nil, err
			}
		}
		return l, nil
	default:
		return val, nil
	}
}

package checker

import (
	"github.com/pkg/errors"
)

// Rule payloads arrive as map[string]interface{} decoded from YAML or JSON,
// so numbers may be int or float64 and lists may be []interface{} or
// []string. The helpers below coerce a named field and report whether it
// was present, letting checkers fall back to their defaults.

// PayloadInt extracts an integer field from a rule payload.
func PayloadInt(payload map[string]interface{}, key string) (int, bool, error) {
	if payload == nil {
		return 0, false, nil
	}
	raw, ok := payload[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case int:
		return v, true, nil
	case int32:
		return int(v), true, nil
	case int64:
		return int(v), true, nil
	case float64:
		return int(v), true, nil
	default:
		return 0, false, errors.Errorf("payload field %q is not a number", key)
	}
}

// PayloadBool extracts a boolean field from a rule payload.
func PayloadBool(payload map[string]interface{}, key string) (bool, bool, error) {
	if payload == nil {
		return false, false, nil
	}
	raw, ok := payload[key]
	if !ok || raw == nil {
		return false, false, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return false, false, errors.Errorf("payload field %q is not a boolean", key)
	}
	return v, true, nil
}

// PayloadString extracts a string field from a rule payload.
func PayloadString(payload map[string]interface{}, key string) (string, bool, error) {
	if payload == nil {
		return "", false, nil
	}
	raw, ok := payload[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", false, errors.Errorf("payload field %q is not a string", key)
	}
	return v, true, nil
}

// PayloadStringList extracts a string list field from a rule payload.
// An explicitly empty list is returned as a non-nil empty slice.
func PayloadStringList(payload map[string]interface{}, key string) ([]string, bool, error) {
	if payload == nil {
		return nil, false, nil
	}
	raw, ok := payload[key]
	if !ok {
		return nil, false, nil
	}
	list, err := coerceStringList(raw)
	if err != nil {
		return nil, false, errors.Wrapf(err, "payload field %q", key)
	}
	return list, true, nil
}

// PayloadStringListMap extracts a map of string lists, e.g. per-table
// field requirements.
func PayloadStringListMap(payload map[string]interface{}, key string) (map[string][]string, bool, error) {
	if payload == nil {
		return nil, false, nil
	}
	raw, ok := payload[key]
	if !ok || raw == nil {
		return nil, false, nil
	}

	result := make(map[string][]string)
	switch v := raw.(type) {
	case map[string]interface{}:
		for name, item := range v {
			list, err := coerceStringList(item)
			if err != nil {
				return nil, false, errors.Wrapf(err, "payload field %q entry %q", key, name)
			}
			result[name] = list
		}
	case map[string][]string:
		for name, list := range v {
			result[name] = list
		}
	default:
		return nil, false, errors.Errorf("payload field %q is not a map", key)
	}
	return result, true, nil
}

func coerceStringList(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case []interface{}:
		list := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, errors.New("non-string item in list")
			}
			list = append(list, str)
		}
		return list, nil
	case []string:
		return v, nil
	case nil:
		return []string{}, nil
	default:
		return nil, errors.New("not a list")
	}
}

package gradeboard

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Fields maps the JSON object of a record onto a [RawEntity].
//
// Each field is a dot-notation path into the object, so "profile.name"
// navigates to {"profile": {"name": "..."}}. An empty Scores path means the
// source carries no assessment mapping.
type Fields struct {
	ID     string
	Name   string
	Scores string
}

// DefaultFields reads "id", "name" and "scores".
var DefaultFields = Fields{
	ID:     "id",
	Name:   "name",
	Scores: "scores",
}

// ParseDataset decodes a response body into a [Dataset].
//
// A body that is not valid JSON yields a [*ParseError]. A valid body whose
// top level is not an array yields an empty dataset, and array elements
// that are not objects are skipped, so downstream code always receives a
// well-formed sequence.
func ParseDataset(body []byte, f Fields) (Dataset, error) {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &ParseError{Err: err}
	}

	items, ok := data.([]interface{})
	if !ok {
		return Dataset{}, nil
	}

	idPath := splitPath(f.ID)
	namePath := splitPath(f.Name)
	scoresPath := splitPath(f.Scores)

	ds := make(Dataset, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		e := RawEntity{Attributes: obj}
		if v, ok := lookupPath(obj, idPath); ok {
			e.ID, _ = scalarString(v)
		}
		if v, ok := lookupPath(obj, namePath); ok {
			e.Name, _ = scalarString(v)
		}
		if v, ok := lookupPath(obj, scoresPath); ok {
			e.Scores = scoresOf(v)
		}
		ds = append(ds, e)
	}
	return ds, nil
}

// scoresOf accepts an object keyed by item or an array of values, which is
// keyed by position.
func scoresOf(v interface{}) map[string]any {
	switch x := v.(type) {
	case map[string]interface{}:
		return x
	case []interface{}:
		m := make(map[string]any, len(x))
		for i, item := range x {
			m[strconv.Itoa(i)] = item
		}
		return m
	default:
		return nil
	}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// lookupPath walks a JSON structure using dot notation parts.
func lookupPath(data map[string]any, parts []string) (interface{}, bool) {
	if len(parts) == 0 || data == nil {
		return nil, false
	}

	var current interface{} = data
	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// scalarString renders a JSON scalar as a string. Objects, arrays and null
// report false.
func scalarString(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	default:
		return "", false
	}
}

package intake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Raw maps field names to values exactly as the presentation layer collected
// them: strings from HTML forms, json.Number/bool/[]any/map[string]any from
// JSON bodies.
type Raw map[string]any

// DecodeJSON reads a JSON object, keeping numbers as json.Number so integer
// fields are not silently rounded through float64.
func DecodeJSON(r io.Reader) (Raw, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw Raw
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode json: expected an object")
	}
	return raw, nil
}

// ParseJSON is DecodeJSON over a byte slice.
func ParseJSON(b []byte) (Raw, error) {
	return DecodeJSON(bytes.NewReader(b))
}

// FromForm converts posted form values. Repeated keys become []string and
// dotted keys ("availability.Monday.start", "stops.0.building") become
// nested maps.
func FromForm(values url.Values) Raw {
	raw := Raw{}
	for key, vals := range values {
		var v any
		switch len(vals) {
		case 0:
			continue
		case 1:
			v = vals[0]
		default:
			v = append([]string(nil), vals...)
		}
		setPath(raw, strings.Split(key, "."), v)
	}
	return raw
}

func setPath(m map[string]any, path []string, v any) {
	if len(path) == 1 {
		if _, isMap := m[path[0]].(map[string]any); isMap {
			return
		}
		m[path[0]] = v
		return
	}
	child, ok := m[path[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		m[path[0]] = child
	}
	setPath(child, path[1:], v)
}

// legacyAliases maps field names used by superseded drafts of the intake
// form onto the canonical names.
var legacyAliases = map[string]string{
	"zip":                   "zip_codes",
	"zips":                  "zip_codes",
	"neighborhood":          "neighborhoods",
	"neighborhoods_txt":     "neighborhoods",
	"only_neighborhoods":    "neighborhood_specific",
	"max_move_in_date":      "move_in_date_max",
	"preferred_tour_date":   "tour_date",
	"max_budget":            "budget_max",
	"max_sqft":              "sqft_max",
	"pet_policy":            "pets",
	"wd_pref":               "washer_dryer",
	"rent_vs_condo":         "preference",
	"people_count":          "people_living",
	"work_loc":              "work_location",
	"commute":               "commuting",
	"other_broker":          "another_broker",
	"other_broker_comments": "another_broker_comment",
	"who_touring":           "tour_person",
	"additional_comments":   "comment",
	"availability_json":     "availability",
}

// canonical returns a shallow copy of raw with legacy names folded in.
// Canonical names win when both spellings are present.
func canonical(raw Raw) Raw {
	out := make(Raw, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for alias, name := range legacyAliases {
		v, ok := out[alias]
		if !ok {
			continue
		}
		delete(out, alias)
		if _, exists := out[name]; !exists {
			out[name] = v
		}
	}
	return out
}

package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// TokenSet is an order-irrelevant set of free-text tokens (zip codes,
// neighborhood names). NewTokenSet trims, drops blanks and deduplicates
// case-insensitively, keeping the first spelling seen.
type TokenSet []string

func NewTokenSet(tokens ...string) TokenSet {
	seen := make(map[string]bool, len(tokens))
	out := make(TokenSet, 0, len(tokens))
	for _, t := range tokens {
		t = strings.Join(strings.Fields(t), " ")
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func (s TokenSet) Contains(token string) bool {
	for _, t := range s {
		if strings.EqualFold(t, strings.TrimSpace(token)) {
			return true
		}
	}
	return false
}

// Encode returns the JSON array stored in the database; an empty set is "[]".
func (s TokenSet) Encode() (string, error) {
	if s == nil {
		s = TokenSet{}
	}
	b, err := json.Marshal([]string(NewTokenSet(s...)))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeTokenSet(blob string) (TokenSet, error) {
	if strings.TrimSpace(blob) == "" {
		return TokenSet{}, nil
	}
	var tokens []string
	if err := json.Unmarshal([]byte(blob), &tokens); err != nil {
		return nil, err
	}
	return NewTokenSet(tokens...), nil
}

// NewAmenitySet sorts and deduplicates amenity tags. Callers are expected to
// have validated membership already.
func NewAmenitySet(tags ...Amenity) []Amenity {
	seen := make(map[Amenity]bool, len(tags))
	out := make([]Amenity, 0, len(tags))
	for _, a := range tags {
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

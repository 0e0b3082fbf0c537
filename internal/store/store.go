package store

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gocraft/dbr/v2"
)

// Clock supplies insert timestamps. Values are truncated to microseconds,
// the precision both backends keep.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func newSession(conn *dbr.Connection) *dbr.Session {
	return conn.NewSession(nil)
}

// likePattern builds a case-insensitive substring pattern for use with
// ESCAPE '!'.
func likePattern(text string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(text)) + "%"
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

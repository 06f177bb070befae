// package source defines interface Source for retrieving raw table rows
// from the legacy Supabase project.
//
// Strategies: Supabase REST (PostgREST), direct SQL connection, a directory
// of JSON exports, and the local staging snapshot. FallbackSource chains
// strategies so a failing primary is retried transparently against the next.
package source

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// Tables lists every source table, in migration dependency order.
var Tables = []string{"teams", "users", "tasks", "games", "meals", "inventory"}

// KnownTable reports whether name is one of the six source tables.
func KnownTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// Row is a flat field-name to scalar-value record as retrieved from the source.
//
// Values arrive with whatever dynamic types the strategy produced (JSON
// decoding yields float64 numbers, database scans yield int64/time.Time), so
// readers go through the typed accessors rather than asserting directly.
// Unknown fields are ignored; absent fields fall back to type-appropriate defaults.
type Row map[string]any

// Source defines the interface for row retrieval strategies.
type Source interface {
	// Fetch returns every row of the named table. An empty table yields an
	// empty slice, not an error.
	Fetch(ctx context.Context, table string) ([]Row, error)

	// Name returns the strategy name for logging (e.g. "supabase-rest").
	Name() string
}

// String returns the named field as a string, or "" when absent or not a string.
func (r Row) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// Int64 returns the named field as an int64 identifier.
// The second return is false when the field is absent, null, or not numeric.
func (r Row) Int64(key string) (int64, bool) {
	switch v := r[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Bool returns the named field as a boolean, defaulting to false when absent.
// Integer 0/1 values (sqlite staging) are accepted.
func (r Row) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

// Float64 returns the named field as a float64.
// The second return is false when the field is absent or not numeric.
func (r Row) Float64(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Time returns the named field as a timestamp, or fallback when the field is
// absent or unparseable. String values are tried against the formats Supabase
// exports produce.
func (r Row) Time(key string, fallback time.Time) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05.999999",
			"2006-01-02 15:04:05.999999-07",
			"2006-01-02 15:04:05",
			"2006-01-02",
		} {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts
			}
		}
		return fallback
	default:
		return fallback
	}
}

// Has reports whether the named field is present and non-null.
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

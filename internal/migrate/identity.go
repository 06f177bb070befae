package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
)

// IdentityMap maps normalized email addresses to SLUGGER identity tokens
// (Cognito user ids already present in the destination directory).
// Built once per run and read-only afterward.
type IdentityMap map[string]string

// NormalizeEmail lower-cases and trims an email so directory lookups are
// case- and whitespace-insensitive. Both sides of every lookup go through
// this function.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Resolve looks up the identity token for an email. The email is normalized
// before lookup; an empty normalized email never resolves.
func (m IdentityMap) Resolve(email string) (string, bool) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return "", false
	}
	token, ok := m[normalized]
	return token, ok
}

// BuildIdentityMap queries the destination's user directory and returns the
// email → identity token mapping.
//
// A failing directory query is a hard error: without it no user row can be
// linked, so callers abort the run rather than proceed blind.
func BuildIdentityMap(ctx context.Context, dest Destination) (IdentityMap, error) {
	entries, err := dest.QueryDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDirectoryQuery, err)
	}

	identity := make(IdentityMap, len(entries))
	for _, entry := range entries {
		normalized := NormalizeEmail(entry.Email)
		if normalized == "" || entry.IdentityToken == "" {
			continue
		}
		identity[normalized] = entry.IdentityToken
	}

	return identity, nil
}

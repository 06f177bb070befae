package migrate

import (
	"fmt"

	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
)

// KeyMap records the destination id assigned to each migrated source id for
// one entity kind. Earlier stages build a KeyMap; later stages consult it to
// rewrite foreign keys.
//
// Entries are write-once: a second Put for the same old id with a different
// new id indicates duplicate source rows and is rejected rather than
// silently overwriting the first mapping.
type KeyMap struct {
	kind string
	ids  map[int64]int64
}

// NewKeyMap creates an empty KeyMap for the named entity kind.
func NewKeyMap(kind string) *KeyMap {
	return &KeyMap{kind: kind, ids: make(map[int64]int64)}
}

// Kind returns the entity kind this map belongs to.
func (m *KeyMap) Kind() string {
	return m.kind
}

// Put records the destination id assigned to oldID. Re-putting the same pair
// is a no-op; a conflicting value returns ErrDuplicateKey and keeps the first
// mapping.
func (m *KeyMap) Put(oldID, newID int64) error {
	if existing, ok := m.ids[oldID]; ok {
		if existing == newID {
			return nil
		}
		return fmt.Errorf("%w: %s id %d already mapped to %d, refusing %d",
			shared.ErrDuplicateKey, m.kind, oldID, existing, newID)
	}
	m.ids[oldID] = newID
	return nil
}

// Get returns the destination id for oldID. The second return is false when
// the source row was never migrated; callers decide whether that is a skip
// (hard dependency) or a null (soft dependency), never a silent default.
func (m *KeyMap) Get(oldID int64) (int64, bool) {
	newID, ok := m.ids[oldID]
	return newID, ok
}

// Len returns the number of recorded mappings.
func (m *KeyMap) Len() int {
	return len(m.ids)
}

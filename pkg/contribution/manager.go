package contribution

import (
	"sort"

	"github.com/agentstation/cffauthor/pkg/identity"
)

// Manager owns the per-identity ordered contribution lists for one run.
// Lists are deduplicated by contribution ID and kept sorted ascending by
// timestamp, ties broken by ID.
type Manager struct {
	byIdentity map[identity.Identity][]Contribution
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{byIdentity: make(map[identity.Identity][]Contribution)}
}

// Add records a contribution for an identity. Adding the same contribution
// ID twice for the same identity is a no-op, so a commit observed both as a
// head commit and through a Co-authored-by trailer is stored once.
func (m *Manager) Add(id identity.Identity, c Contribution) {
	list := m.byIdentity[id]
	for _, existing := range list {
		if existing.ID == c.ID {
			return
		}
	}
	list = append(list, c)
	sort.Slice(list, func(i, j int) bool { return list[i].Before(list[j]) })
	m.byIdentity[id] = list
}

// Merge folds every contribution of other into m. Merge order never changes
// final membership: lists are resorted after every insertion.
func (m *Manager) Merge(other *Manager) {
	if other == nil {
		return
	}
	for id, list := range other.byIdentity {
		for _, c := range list {
			m.Add(id, c)
		}
	}
}

// Len returns the number of identities with at least one contribution.
func (m *Manager) Len() int {
	return len(m.byIdentity)
}

// Identities returns all identities, sorted by key for determinism.
func (m *Manager) Identities() []identity.Identity {
	out := make([]identity.Identity, 0, len(m.byIdentity))
	for id := range m.byIdentity {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// SortedByFirstContribution returns identities ordered by their earliest
// contribution timestamp, ties broken by identity key.
func (m *Manager) SortedByFirstContribution() []identity.Identity {
	out := make([]identity.Identity, 0, len(m.byIdentity))
	for id, list := range m.byIdentity {
		if len(list) > 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := m.byIdentity[out[i]][0], m.byIdentity[out[j]][0]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// For returns the ordered contributions of one identity.
func (m *Manager) For(id identity.Identity) []Contribution {
	list := m.byIdentity[id]
	out := make([]Contribution, len(list))
	copy(out, list)
	return out
}

// CategoriesFor groups one identity's contributions by kind, preserving the
// per-kind timestamp ordering.
func (m *Manager) CategoriesFor(id identity.Identity) map[Kind][]Contribution {
	categories := make(map[Kind][]Contribution)
	for _, c := range m.byIdentity[id] {
		categories[c.Kind] = append(categories[c.Kind], c)
	}
	return categories
}

// FirstCategorized returns the identity's first contribution in the highest
// priority kind it has, for citing in warnings.
func (m *Manager) FirstCategorized(id identity.Identity) (Contribution, bool) {
	categories := m.CategoriesFor(id)
	for _, kind := range KindPriority {
		if list := categories[kind]; len(list) > 0 {
			return list[0], true
		}
	}
	return Contribution{}, false
}

// ManifestContributor identifies a contributor in the exported manifest.
type ManifestContributor struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ManifestEntry pairs a contributor with their ordered contributions.
type ManifestEntry struct {
	Contributor   ManifestContributor `json:"contributor"`
	Contributions []Contribution      `json:"contributions"`
}

// Manifest exports the normalized per-identity contribution listing,
// ordered by first contribution, for structured (JSON) output.
func (m *Manager) Manifest() []ManifestEntry {
	ids := m.SortedByFirstContribution()
	out := make([]ManifestEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, ManifestEntry{
			Contributor: ManifestContributor{
				ID:          id.Key(),
				Description: id.Describe(),
			},
			Contributions: m.For(id),
		})
	}
	return out
}

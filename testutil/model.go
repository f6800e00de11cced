package testutil

import "slices"

// Link is a model link.
type Link struct {
	ID, Source, Target uint64
}

// Model is a reference link store: ids are allocated densely from 1 and
// freed ids are reused most recent first. It does not validate references.
type Model struct {
	links     map[uint64]Link
	free      []uint64
	allocated uint64
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{links: make(map[uint64]Link)}
}

// Create adds a self-loop and returns its id.
func (m *Model) Create() uint64 {
	var id uint64
	if n := len(m.free); n > 0 {
		id = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		m.allocated++
		id = m.allocated
	}
	m.links[id] = Link{ID: id, Source: id, Target: id}
	return id
}

// Update rewrites a live link. It reports false if id is not live.
func (m *Model) Update(id, source, target uint64) bool {
	if _, ok := m.links[id]; !ok {
		return false
	}
	m.links[id] = Link{ID: id, Source: source, Target: target}
	return true
}

// Delete removes a live link. It reports false if id is not live.
func (m *Model) Delete(id uint64) bool {
	if _, ok := m.links[id]; !ok {
		return false
	}
	delete(m.links, id)
	m.free = append(m.free, id)
	return true
}

// Get returns a live link.
func (m *Model) Get(id uint64) (Link, bool) {
	l, ok := m.links[id]
	return l, ok
}

// Len returns the number of live links.
func (m *Model) Len() int {
	return len(m.links)
}

// IDs returns the live ids in ascending order.
func (m *Model) IDs() []uint64 {
	ids := make([]uint64, 0, len(m.links))
	for id := range m.links {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Pick maps a raw pick onto a live id. It reports false if the model is empty.
func (m *Model) Pick(raw int) (uint64, bool) {
	ids := m.IDs()
	if len(ids) == 0 {
		return 0, false
	}
	return ids[raw%len(ids)], true
}

// Endpoint maps a raw endpoint pick onto null (0) or a live id.
func (m *Model) Endpoint(raw int) uint64 {
	if raw < 0 {
		return 0
	}
	id, _ := m.Pick(raw)
	return id
}

// Match returns the ids of live links matching the pattern in ascending
// id order. A nil component matches anything.
func (m *Model) Match(source, target *uint64) []uint64 {
	var out []uint64
	for _, id := range m.IDs() {
		l := m.links[id]
		if source != nil && l.Source != *source {
			continue
		}
		if target != nil && l.Target != *target {
			continue
		}
		out = append(out, id)
	}
	return out
}

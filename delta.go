package immocrawl

import "sort"

// IDSet is a set of listing identifiers.
type IDSet map[string]struct{}

// NewIDSet returns a set containing ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members of the set in ascending order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Delta is the difference between the identifiers of two consecutive runs.
// Each slice is sorted.
type Delta struct {
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Unchanged []string `json:"unchanged"`
}

// CompareIDs computes which identifiers were added, removed or kept between
// the previous run and the current one. An empty previous set (first run)
// yields no removals and every current id as added.
func CompareIDs(current, previous IDSet) Delta {
	d := Delta{
		Added:     []string{},
		Removed:   []string{},
		Unchanged: []string{},
	}

	for id := range current {
		if previous.Has(id) {
			d.Unchanged = append(d.Unchanged, id)
		} else {
			d.Added = append(d.Added, id)
		}
	}
	for id := range previous {
		if !current.Has(id) {
			d.Removed = append(d.Removed, id)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Unchanged)
	return d
}

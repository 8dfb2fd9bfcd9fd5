package model

// EdgeKind names one of the many-to-many relations between entities.
type EdgeKind string

const (
	// EdgeFollows goes from the follower user to the followed user.
	EdgeFollows EdgeKind = "follows"
	// EdgeFavorites goes from the user to the favorited article.
	EdgeFavorites EdgeKind = "favorites"
)

// IDSet is a set of entity ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids, duplicates collapse.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has is safe to call on a nil set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int {
	return len(s)
}

// EdgeSet is a set of directed (from, to) pairs indexed by both endpoints.
// It is not safe for concurrent use; callers own the locking.
type EdgeSet struct {
	out map[string]IDSet
	in  map[string]IDSet
}

func NewEdgeSet() *EdgeSet {
	return &EdgeSet{
		out: make(map[string]IDSet),
		in:  make(map[string]IDSet),
	}
}

func (e *EdgeSet) Has(from, to string) bool {
	return e.out[from].Has(to)
}

// Add inserts the pair and returns false if it was already present.
func (e *EdgeSet) Add(from, to string) bool {
	if e.Has(from, to) {
		return false
	}
	if e.out[from] == nil {
		e.out[from] = IDSet{}
	}
	if e.in[to] == nil {
		e.in[to] = IDSet{}
	}
	e.out[from][to] = struct{}{}
	e.in[to][from] = struct{}{}
	return true
}

// Remove deletes the pair and returns false if it was absent.
func (e *EdgeSet) Remove(from, to string) bool {
	if !e.Has(from, to) {
		return false
	}
	delete(e.out[from], to)
	if len(e.out[from]) == 0 {
		delete(e.out, from)
	}
	delete(e.in[to], from)
	if len(e.in[to]) == 0 {
		delete(e.in, to)
	}
	return true
}

// From returns a copy of every "to" endpoint connected from the given id.
func (e *EdgeSet) From(from string) IDSet {
	return copySet(e.out[from])
}

// To returns a copy of every "from" endpoint connected to the given id.
func (e *EdgeSet) To(to string) IDSet {
	return copySet(e.in[to])
}

// RemoveEndpoint drops every pair touching id on either side, used when an
// entity is deleted.
func (e *EdgeSet) RemoveEndpoint(id string) {
	for to := range e.out[id] {
		e.Remove(id, to)
	}
	for from := range e.in[id] {
		e.Remove(from, id)
	}
}

func copySet(s IDSet) IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

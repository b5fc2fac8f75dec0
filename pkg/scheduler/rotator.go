package scheduler

import (
	"sort"
	"sync"

	"github.com/umputun/tradescope/pkg/domain"
)

// Rotator keeps the last served source so each tick starts after it.
// With a quota too small to cover all sources every tick, each source still gets its turn.
type Rotator struct {
	mu   sync.Mutex
	last int64
}

// Order returns sources sorted by id, starting with the first one after the last served
func (r *Rotator) Order(sources []domain.Source) []domain.Source {
	res := make([]domain.Source, len(sources))
	copy(res, sources)
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	r.mu.Lock()
	last := r.last
	r.mu.Unlock()

	start := sort.Search(len(res), func(i int) bool { return res[i].ID > last })
	if start == 0 || start == len(res) {
		return res
	}
	ordered := make([]domain.Source, 0, len(res))
	ordered = append(ordered, res[start:]...)
	return append(ordered, res[:start]...)
}

// Advance records the source as served
func (r *Rotator) Advance(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = id
}

// Last returns the id of the last served source, 0 if none
func (r *Rotator) Last() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

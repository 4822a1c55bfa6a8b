package phrasebook

import (
	"slices"
	"sync"
)

// Favorites is an ordered set of phrase ids shared by all clients of a
// process.
type Favorites struct {
	mu  sync.Mutex
	ids []int
}

func NewFavorites() *Favorites {
	return &Favorites{}
}

func (f *Favorites) List() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int{}, f.ids...)
}

// Toggle adds id when absent, removes it when present, and returns the
// resulting list.
func (f *Favorites) Toggle(id int) []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if idx := slices.Index(f.ids, id); idx >= 0 {
		f.ids = slices.Delete(f.ids, idx, idx+1)
	} else {
		f.ids = append(f.ids, id)
	}
	return append([]int{}, f.ids...)
}

package querystate

import (
	"strconv"
	"strings"
	"sync"

	"github.com/khrees2412/jobdeck/pkg/models"
)

// Navigator replaces the current view with a new query.
type Navigator interface {
	Current() string
	Replace(query string)
}

// Binder reads facet selections and the page from its navigator and writes
// edits back through it. The navigator's query is the source of truth; the
// binder holds no selection of its own between calls.
type Binder struct {
	nav   Navigator
	known map[string]bool
}

// NewBinder returns a binder for the given facet keys. Keys outside that set
// still decode but are reported by Unrecognized.
func NewBinder(nav Navigator, facets ...string) *Binder {
	known := make(map[string]bool, len(facets))
	for _, f := range facets {
		known[f] = true
	}
	return &Binder{nav: nav, known: known}
}

// State decodes the navigator's current query.
func (b *Binder) State() State {
	return Decode(b.nav.Current())
}

// Unrecognized lists the keys of sel that are not known facets, sorted.
func (b *Binder) Unrecognized(sel models.FacetSelection) []string {
	var out []string
	for _, key := range sel.Keys() {
		if !b.known[key] {
			out = append(out, key)
		}
	}
	return out
}

// ApplyFacetToggle flips value in facet key and navigates to the result.
// The page index is left as it is.
func (b *Binder) ApplyFacetToggle(key, value string) State {
	current := b.nav.Current()
	st, ok := decode(current)
	st.Selection.Toggle(key, value)

	var next string
	if ok {
		next = SetParam(current, key, strings.Join(st.Selection[key], ","))
	} else {
		next = Encode(st.Selection, st.Page)
	}
	b.nav.Replace(next)
	return Decode(next)
}

// ClearFacet removes every value of facet key and navigates to the result.
func (b *Binder) ClearFacet(key string) State {
	next := SetParam(b.nav.Current(), key, "")
	b.nav.Replace(next)
	return Decode(next)
}

// SetPage navigates to page n, keeping every other parameter.
func (b *Binder) SetPage(n int) State {
	value := ""
	if n > 1 {
		value = strconv.Itoa(n)
	}
	next := SetParam(b.nav.Current(), PageParam, value)
	b.nav.Replace(next)
	return Decode(next)
}

// MemoryNavigator is an in-process Navigator that records every query it is
// given.
type MemoryNavigator struct {
	mu      sync.Mutex
	history []string
}

// NewMemoryNavigator starts at initial.
func NewMemoryNavigator(initial string) *MemoryNavigator {
	return &MemoryNavigator{history: []string{strings.TrimPrefix(initial, "?")}}
}

func (n *MemoryNavigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history[len(n.history)-1]
}

func (n *MemoryNavigator) Replace(query string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history = append(n.history, query)
}

// History returns every query navigated to, oldest first.
func (n *MemoryNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}

// Package team resolves consultant categories from two layers: entries
// loaded from the team sheet and manual overrides. Overrides win, and the
// layer an answer came from stays visible.
package team

import (
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/okian/workforce/internal/domain/model"
)

// Source names the layer a category was resolved from.
type Source string

const (
	SourceNone   Source = ""
	SourceSheet  Source = "sheet"
	SourceManual Source = "manual"
)

// Entry is one resolved consultant category with its provenance.
type Entry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Source   Source `json:"source"`
}

// Layers is safe for concurrent use.
type Layers struct {
	mu        sync.RWMutex
	sheet     map[string]string
	overrides map[string]string
	excluded  map[string]struct{}
}

// Option configures Layers.
type Option func(*Layers)

// WithExcludedCategories drops records whose resolved category is one of
// names. Comparison ignores case.
func WithExcludedCategories(names ...string) Option {
	return func(l *Layers) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				l.excluded[strings.ToLower(n)] = struct{}{}
			}
		}
	}
}

// New creates empty layers.
func New(opts ...Option) *Layers {
	l := &Layers{
		sheet:     map[string]string{},
		overrides: map[string]string{},
		excluded:  map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ReplaceSheet swaps the whole sheet layer.
func (l *Layers) ReplaceSheet(entries map[string]string) {
	l.mu.Lock()
	l.sheet = maps.Clone(entries)
	if l.sheet == nil {
		l.sheet = map[string]string{}
	}
	l.mu.Unlock()
}

// SetOverrides merges manual entries. A blank category removes the
// override for that name.
func (l *Layers) SetOverrides(entries map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for name, category := range entries {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if category = strings.TrimSpace(category); category == "" {
			delete(l.overrides, name)
			continue
		}
		l.overrides[name] = category
	}
}

// Resolve returns the category for name and the layer it came from.
func (l *Layers) Resolve(name string) (string, Source, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.resolveLocked(name)
}

func (l *Layers) resolveLocked(name string) (string, Source, bool) {
	if c, ok := l.overrides[name]; ok {
		return c, SourceManual, true
	}
	if c, ok := l.sheet[name]; ok {
		return c, SourceSheet, true
	}
	return "", SourceNone, false
}

// Entries lists every name known to either layer, resolved.
func (l *Layers) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make(map[string]struct{}, len(l.sheet)+len(l.overrides))
	for n := range l.sheet {
		names[n] = struct{}{}
	}
	for n := range l.overrides {
		names[n] = struct{}{}
	}
	out := make([]Entry, 0, len(names))
	for n := range names {
		c, src, _ := l.resolveLocked(n)
		out = append(out, Entry{Name: n, Category: c, Source: src})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Counts reports the size of each layer.
func (l *Layers) Counts() (sheet, manual int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sheet), len(l.overrides)
}

// Apply returns copies of records with ConsultantType replaced by the
// resolved category, dropping records in an excluded category.
func (l *Layers) Apply(records []model.Record) []model.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if c, _, ok := l.resolveLocked(r.Consultant); ok {
			r.ConsultantType = c
		}
		if _, drop := l.excluded[strings.ToLower(r.ConsultantType)]; drop {
			continue
		}
		out = append(out, r)
	}
	return out
}

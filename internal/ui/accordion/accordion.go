// Package accordion tracks which FAQ items are expanded.
package accordion

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Mode controls how many items may be open at once.
type Mode int

const (
	// Single allows at most one open item.
	Single Mode = iota
	// Multiple lets every item open and close on its own.
	Multiple
)

func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case Multiple:
		return "multiple"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "single" or "multiple" (any case) to a Mode.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "single", "":
		return Single, nil
	case "multiple":
		return Multiple, nil
	default:
		return Single, fmt.Errorf("accordion: unknown mode %q", raw)
	}
}

// Accordion is the open set of an FAQ list. The zero value is not usable; call New.
type Accordion struct {
	mode        Mode
	collapsible bool
	defaults    []string

	mu   sync.Mutex
	open map[string]struct{}
}

// New returns an accordion with the default keys open. In Single mode only
// the first non-empty default is used.
func New(mode Mode, collapsible bool, defaults ...string) *Accordion {
	a := &Accordion{mode: mode, collapsible: collapsible}
	for _, key := range defaults {
		if key = strings.TrimSpace(key); key == "" {
			continue
		}
		a.defaults = append(a.defaults, key)
		if mode == Single {
			break
		}
	}
	a.Reset()
	return a
}

// Mode reports the configured mode.
func (a *Accordion) Mode() Mode { return a.mode }

// Collapsible reports whether the open item in Single mode may be closed.
func (a *Accordion) Collapsible() bool { return a.collapsible }

// Toggle applies a click on key. An empty key is ignored.
func (a *Accordion) Toggle(key string) {
	if key == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	_, isOpen := a.open[key]
	if a.mode == Multiple {
		if isOpen {
			delete(a.open, key)
		} else {
			a.open[key] = struct{}{}
		}
		return
	}

	if isOpen {
		if a.collapsible {
			delete(a.open, key)
		}
		return
	}
	a.open = map[string]struct{}{key: {}}
}

// IsOpen reports whether key is expanded.
func (a *Accordion) IsOpen(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.open[key]
	return ok
}

// OpenKeys returns the expanded keys in sorted order.
func (a *Accordion) OpenKeys() []string {
	a.mu.Lock()
	keys := make([]string, 0, len(a.open))
	for key := range a.open {
		keys = append(keys, key)
	}
	a.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// Reset restores the default open set.
func (a *Accordion) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.open = make(map[string]struct{}, len(a.defaults))
	for _, key := range a.defaults {
		a.open[key] = struct{}{}
	}
}

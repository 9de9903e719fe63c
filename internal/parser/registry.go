package parser

import (
	"fmt"
	"sort"
	"sync"

	"labparse/internal/logging"
	"labparse/internal/port"
)

// DetectionWindow is the default number of leading runes recognizers see.
const DetectionWindow = 4000

// Registry holds format adapters ordered by ascending priority. Adapters
// sharing a priority keep their registration order.
type Registry struct {
	mu       sync.RWMutex
	adapters []port.FormatAdapter
	window   int
	log      logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log logging.Logger) *Registry {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Registry{window: DetectionWindow, log: log}
}

// SetDetectionWindow changes how many leading runes recognizers see.
// Non-positive values restore DetectionWindow.
func (r *Registry) SetDetectionWindow(n int) {
	if n <= 0 {
		n = DetectionWindow
	}
	r.mu.Lock()
	r.window = n
	r.mu.Unlock()
}

// Register adds a and re-sorts the adapter list by priority.
func (r *Registry) Register(a port.FormatAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = append(r.adapters, a)
	sort.SliceStable(r.adapters, func(i, j int) bool {
		return r.adapters[i].Priority() < r.adapters[j].Priority()
	})
}

// Adapters returns the adapters in detection order.
func (r *Registry) Adapters() []port.FormatAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]port.FormatAdapter(nil), r.adapters...)
}

// Get looks an adapter up by name.
func (r *Registry) Get(name string) (port.FormatAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.adapters {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// DetectFormat returns the first adapter whose recognizer accepts the
// document, or nil. A recognizer that panics counts as a non-match.
func (r *Registry) DetectFormat(text, filename string) port.FormatAdapter {
	r.mu.RLock()
	window := r.window
	r.mu.RUnlock()
	head := Head(text, window)
	for _, a := range r.Adapters() {
		if r.recognizes(a, head, filename) {
			return a
		}
	}
	return nil
}

func (r *Registry) recognizes(a port.FormatAdapter, head, filename string) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("parser.registry.detect_panic",
				logging.String("adapter", a.Name()),
				logging.String("panic", fmt.Sprint(rec)),
			)
			ok = false
		}
	}()
	return a.CanParse(head, filename)
}

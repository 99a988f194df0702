package page

import (
	"context"
	"strconv"
	"sync"
)

// Kind is the type of a user interaction.
type Kind string

const (
	Click    Kind = "click"
	Change   Kind = "change"
	Input    Kind = "input"
	KeyPress Kind = "keypress"
	Submit   Kind = "submit"
	Unload   Kind = "unload"
)

// KeyEnter is the key name reported for the Enter key.
const KeyEnter = "Enter"

// Target identifies an element an event passes through. Name is "#id" for
// unique elements and ".class" for repeated ones (list rows, buttons).
type Target struct {
	Name string
	Data map[string]string
}

// T builds a target from a name and alternating data key/value pairs.
func T(name string, kv ...string) Target {
	t := Target{Name: name}
	if len(kv) > 1 {
		t.Data = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			t.Data[kv[i]] = kv[i+1]
		}
	}
	return t
}

// Datum returns a data attribute of the target.
func (t Target) Datum(key string) string {
	return t.Data[key]
}

// IntDatum parses a numeric data attribute.
func (t Target) IntDatum(key string) (int, bool) {
	n, err := strconv.Atoi(t.Data[key])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Event is a single interaction. Path lists the targets it passes
// through, innermost first; handlers bound to outer targets only run if
// no inner handler stopped propagation.
type Event struct {
	Kind    Kind
	Path    []Target
	Value   string
	Checked bool
	Key     string

	// Current is the target whose handlers are running.
	Current Target

	stopped bool
}

// StopPropagation keeps the event from reaching outer targets.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool { return e.stopped }

// NewClick builds a click event travelling through path.
func NewClick(path ...Target) *Event {
	return &Event{Kind: Click, Path: path}
}

// NewInput builds an input event carrying the field's current value.
func NewInput(target Target, value string) *Event {
	return &Event{Kind: Input, Path: []Target{target}, Value: value}
}

// NewKeyPress builds a key press event on a text field.
func NewKeyPress(target Target, key, value string) *Event {
	return &Event{Kind: KeyPress, Path: []Target{target}, Key: key, Value: value}
}

// NewChange builds a checkbox change event.
func NewChange(target Target, checked bool) *Event {
	return &Event{Kind: Change, Path: []Target{target}, Checked: checked}
}

// NewSubmit builds a form submit event carrying the input value.
func NewSubmit(target Target, value string) *Event {
	return &Event{Kind: Submit, Path: []Target{target}, Value: value}
}

// WindowTarget receives page-level events such as Unload.
const WindowTarget = "window"

// NewUnload builds the event fired when the page goes away.
func NewUnload() *Event {
	return &Event{Kind: Unload, Path: []Target{{Name: WindowTarget}}}
}

// Handler reacts to an event reaching a bound target.
type Handler func(ctx context.Context, ev *Event)

type binding struct {
	kind   Kind
	target string
}

// Registry maps (kind, target name) to handlers. Handlers are bound once
// and match any element carrying the target name, including elements
// rendered after binding.
type Registry struct {
	mu       sync.RWMutex
	handlers map[binding][]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[binding][]Handler)}
}

// On binds h to events of kind reaching target.
func (r *Registry) On(kind Kind, target string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := binding{kind: kind, target: target}
	r.handlers[b] = append(r.handlers[b], h)
}

// Bound reports whether any handler is bound for kind and target.
func (r *Registry) Bound(kind Kind, target string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[binding{kind: kind, target: target}]) > 0
}

// Reset removes every binding.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[binding][]Handler)
}

// Dispatch delivers ev along its path and returns the number of handlers
// that ran.
func (r *Registry) Dispatch(ctx context.Context, ev *Event) int {
	ran := 0
	for _, t := range ev.Path {
		r.mu.RLock()
		hs := append([]Handler(nil), r.handlers[binding{kind: ev.Kind, target: t.Name}]...)
		r.mu.RUnlock()

		ev.Current = t
		for _, h := range hs {
			h(ctx, ev)
			ran++
		}
		if ev.stopped {
			break
		}
	}
	return ran
}

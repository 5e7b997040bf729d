// Package hotkey watches raw keyboard events and fires registered
// bindings. One reader goroutine blocks per input device; matching
// happens on that thread, callbacks are handed off so a slow callback
// never delays event processing.
package hotkey

import (
	"sync"

	evdev "github.com/holoplot/go-evdev"
)

// Key is an evdev key code.
type Key = evdev.EvCode

// Action is the capability a binding fires.
type Action interface {
	Fire()
}

// ActionFunc adapts a plain function to Action.
type ActionFunc func()

func (f ActionFunc) Fire() { f() }

type binding struct {
	modifiers []Key
	trigger   Key
	action    Action
}

// matches reports whether a press of key should fire this binding given
// the currently pressed set. The pressed set may contain keys beyond
// the binding's modifiers: superset matching is the documented policy,
// so holding an extra modifier does not block firing.
func (b binding) matches(key Key, pressed map[Key]struct{}) bool {
	if key != b.trigger {
		return false
	}
	for _, m := range b.modifiers {
		if _, ok := pressed[m]; !ok {
			return false
		}
	}
	return true
}

// Detector tracks the live pressed-key set and the binding registry.
// The mutex guards both and is held only for the instant of an
// insert/remove/match, never across a callback.
type Detector struct {
	mu       sync.Mutex
	pressed  map[Key]struct{}
	bindings map[int]binding
	nextID   int
	devices  []InputDevice
}

func NewDetector() *Detector {
	return &Detector{
		pressed:  make(map[Key]struct{}),
		bindings: make(map[int]binding),
	}
}

// Register adds a binding and returns its id. Multiple simultaneous
// bindings are supported; each matching binding fires independently.
func (d *Detector) Register(modifiers []Key, trigger Key, action Action) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	mods := make([]Key, len(modifiers))
	copy(mods, modifiers)
	d.bindings[id] = binding{modifiers: mods, trigger: trigger, action: action}
	return id
}

// Unregister removes every binding whose modifier set and trigger match
// exactly.
func (d *Detector) Unregister(modifiers []Key, trigger Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, b := range d.bindings {
		if b.trigger == trigger && sameKeySet(b.modifiers, modifiers) {
			delete(d.bindings, id)
		}
	}
}

// Clear drops every binding.
func (d *Detector) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bindings = make(map[int]binding)
}

// HandleEvent feeds one raw event through the detector. Key presses
// insert into the pressed set and evaluate bindings; releases remove.
// Autorepeat (value 2) neither inserts nor fires, so a held trigger
// fires exactly once per physical press.
func (d *Detector) HandleEvent(ev *evdev.InputEvent) {
	if ev.Type != evdev.EV_KEY {
		return
	}
	switch ev.Value {
	case 1:
		d.press(ev.Code)
	case 0:
		d.release(ev.Code)
	}
}

func (d *Detector) press(key Key) {
	d.mu.Lock()
	d.pressed[key] = struct{}{}
	var fired []Action
	for _, b := range d.bindings {
		if b.matches(key, d.pressed) {
			fired = append(fired, b.action)
		}
	}
	d.mu.Unlock()

	for _, a := range fired {
		go a.Fire()
	}
}

func (d *Detector) release(key Key) {
	d.mu.Lock()
	delete(d.pressed, key)
	d.mu.Unlock()
}

// Pressed reports whether a key is currently held. Used by tests and
// diagnostics.
func (d *Detector) Pressed(key Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pressed[key]
	return ok
}

func sameKeySet(a, b []Key) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[Key]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	for _, k := range b {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}

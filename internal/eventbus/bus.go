// Package eventbus implements an ordered publish/subscribe listener
// registry keyed by string.
//
// Listeners for a key run in registration order. A listener that panics is
// isolated: the panic is recovered, reported through the failure hook, and
// the remaining listeners for the same dispatch still run. Dispatch never
// reports listener failures to the producer.
package eventbus

import (
	"reflect"
	"sync"
)

type Handler[T any] func(payload T)

type Bus[T any] struct {
	mu        sync.Mutex
	listeners map[string][]*registration[T]

	// onFailure is invoked with the dispatch key and the recovered value
	// when a listener panics. May be nil.
	onFailure func(key string, recovered any)
}

type registration[T any] struct {
	handler Handler[T]
	ptr     uintptr
	once    bool
}

func New[T any](onFailure func(key string, recovered any)) *Bus[T] {
	return &Bus[T]{
		listeners: make(map[string][]*registration[T]),
		onFailure: onFailure,
	}
}

// On registers handler for key and returns a disposer that removes exactly
// this registration. Registering the same function multiple times is
// allowed; each registration is invoked separately.
func (b *Bus[T]) On(key string, handler Handler[T]) func() {
	return b.register(key, handler, false)
}

// Once registers handler for key; the registration is removed right before
// its first invocation, so it runs at most once across any number of
// dispatches.
func (b *Bus[T]) Once(key string, handler Handler[T]) func() {
	return b.register(key, handler, true)
}

func (b *Bus[T]) register(key string, handler Handler[T], once bool) func() {
	reg := &registration[T]{
		handler: handler,
		ptr:     reflect.ValueOf(handler).Pointer(),
		once:    once,
	}

	b.mu.Lock()
	b.listeners[key] = append(b.listeners[key], reg)
	b.mu.Unlock()

	return func() { b.remove(key, reg) }
}

// Off removes every registration of handler under key. It is a no-op when
// handler was never registered. Handlers are matched by code pointer, so
// closures created from the same func literal are indistinguishable and
// are all removed together; use the disposer returned by On or Once to
// remove exactly one registration.
func (b *Bus[T]) Off(key string, handler Handler[T]) {
	ptr := reflect.ValueOf(handler).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.listeners[key][:0]
	for _, reg := range b.listeners[key] {
		if reg.ptr != ptr {
			kept = append(kept, reg)
		}
	}
	b.setLocked(key, kept)
}

// Clear removes all listeners for the given keys, or every listener when no
// key is given.
func (b *Bus[T]) Clear(keys ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(keys) == 0 {
		b.listeners = make(map[string][]*registration[T])
		return
	}
	for _, key := range keys {
		delete(b.listeners, key)
	}
}

// Dispatch invokes all listeners currently registered for key, in
// registration order, and returns once every one of them has run. The
// listener list is snapshotted first, so listeners may register or remove
// listeners (including themselves) without corrupting the iteration;
// registrations added during a dispatch only see subsequent dispatches.
func (b *Bus[T]) Dispatch(key string, payload T) {
	b.mu.Lock()
	snapshot := make([]*registration[T], len(b.listeners[key]))
	copy(snapshot, b.listeners[key])
	kept := b.listeners[key][:0]
	for _, reg := range b.listeners[key] {
		if !reg.once {
			kept = append(kept, reg)
		}
	}
	b.setLocked(key, kept)
	b.mu.Unlock()

	for _, reg := range snapshot {
		b.invoke(key, reg, payload)
	}
}

func (b *Bus[T]) invoke(key string, reg *registration[T], payload T) {
	defer func() {
		if recovered := recover(); recovered != nil && b.onFailure != nil {
			b.onFailure(key, recovered)
		}
	}()
	reg.handler(payload)
}

func (b *Bus[T]) remove(key string, target *registration[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.listeners[key][:0]
	for _, reg := range b.listeners[key] {
		if reg != target {
			kept = append(kept, reg)
		}
	}
	b.setLocked(key, kept)
}

func (b *Bus[T]) setLocked(key string, regs []*registration[T]) {
	if len(regs) == 0 {
		delete(b.listeners, key)
		return
	}
	b.listeners[key] = regs
}

package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/fileroutes/pkg/errors"
)

// Registry is a generic, thread-safe registry for storing and retrieving items by name
type Registry[T any] interface {
	// Register adds an item to the registry
	Register(name string, item T) error

	// Get retrieves an item from the registry
	Get(name string) (T, error)

	// Remove removes an item from the registry
	Remove(name string) error

	// List returns all registered names in registration order
	List() []string

	// Sorted returns all registered names in lexical order
	Sorted() []string

	// Has checks if an item is registered
	Has(name string) bool

	// Count returns the number of registered items
	Count() int
}

type registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
	fold  bool
}

// Option configures a registry
type Option func(*options)

type options struct {
	fold bool
}

// CaseInsensitive makes lookups ignore case. Names are stored lower-cased.
func CaseInsensitive() Option {
	return func(o *options) { o.fold = true }
}

// New creates a new Registry instance
func New[T any](opts ...Option) Registry[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &registry[T]{
		items: make(map[string]T),
		fold:  o.fold,
	}
}

func (r *registry[T]) key(name string) string {
	name = strings.TrimSpace(name)
	if r.fold {
		return strings.ToLower(name)
	}
	return name
}

// Register adds an item to the registry
func (r *registry[T]) Register(name string, item T) error {
	name = r.key(name)
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "registry name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "item '%s' is already registered", name)
	}

	r.items[name] = item
	r.order = append(r.order, name)
	return nil
}

// Get retrieves an item from the registry
func (r *registry[T]) Get(name string) (T, error) {
	name = r.key(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[name]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}
	return item, nil
}

// Remove removes an item from the registry
func (r *registry[T]) Remove(name string) error {
	name = r.key(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; !exists {
		return errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}

	delete(r.items, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

func (r *registry[T]) Sorted() []string {
	names := r.List()
	sort.Strings(names)
	return names
}

func (r *registry[T]) Has(name string) bool {
	name = r.key(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// MustRegister registers an item and panics if registration fails.
// Registration errors at init time are programming errors.
func MustRegister[T any](reg Registry[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}

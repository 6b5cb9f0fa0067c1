package union

import (
	"fmt"
	"sort"
	"sync"

	"github.com/algebnaly/xdr-brk-enum/internal/logger"
)

// Registry holds resolved unions by name. Unions are resolved when they are
// registered, so a malformed definition is rejected before any value of it
// can be encoded or decoded.
//
// Example usage:
//
//	reg := NewRegistry(WithEvaluator(consteval.New(nil)))
//	if _, err := reg.Register(&Spec{Name: "Message", Variants: variants}); err != nil {
//	    return err
//	}
//	msg, _ := reg.Get("Message")
//	data, err := msg.Marshal(Value{Variant: "Ping"})
type Registry struct {
	mu     sync.RWMutex
	unions map[string]*Resolved
	opts   []ResolveOption
}

// NewRegistry creates an empty registry. The options are applied to every
// Register call.
func NewRegistry(opts ...ResolveOption) *Registry {
	return &Registry{
		unions: make(map[string]*Resolved),
		opts:   opts,
	}
}

// Register resolves spec and stores the result under its name.
// Returns an error if resolution fails or the name is already taken.
func (r *Registry) Register(spec *Spec) (*Resolved, error) {
	if spec != nil {
		r.mu.RLock()
		_, exists := r.unions[spec.Name]
		r.mu.RUnlock()
		if exists {
			return nil, fmt.Errorf("union %q already registered", spec.Name)
		}
	}

	resolved, err := Resolve(spec, r.opts...)
	if err != nil {
		logger.Warn("Union definition rejected",
			logger.Union(specName(spec)),
			logger.ErrorCode(codeLabel(err)),
			logger.Err(err))
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.unions[resolved.Name()]; exists {
		return nil, fmt.Errorf("union %q already registered", resolved.Name())
	}
	r.unions[resolved.Name()] = resolved

	logger.Debug("Union registered",
		logger.Union(resolved.Name()),
		logger.Variants(len(resolved.variants)))
	return resolved, nil
}

func specName(spec *Spec) string {
	if spec == nil {
		return ""
	}
	return spec.Name
}

// Get returns the union registered under name.
func (r *Registry) Get(name string) (*Resolved, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resolved, ok := r.unions[name]
	if !ok {
		return nil, fmt.Errorf("union %q not registered", name)
	}
	return resolved, nil
}

// MustGet is like Get but panics if the union is missing.
func (r *Registry) MustGet(name string) *Resolved {
	resolved, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return resolved
}

// Names returns the registered union names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.unions))
	for name := range r.unions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lazy resolves a union on first use and caches the outcome, including a
// definition error. It is safe for concurrent use.
type Lazy struct {
	get func() (*Resolved, error)
}

// NewLazy returns a Lazy for spec. spec must not be modified afterwards.
func NewLazy(spec *Spec, opts ...ResolveOption) *Lazy {
	return &Lazy{
		get: sync.OnceValues(func() (*Resolved, error) {
			return Resolve(spec, opts...)
		}),
	}
}

// Get returns the resolved union, resolving it on the first call.
func (l *Lazy) Get() (*Resolved, error) {
	return l.get()
}

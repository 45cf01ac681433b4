package prizes

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves rule set ids to rule sets. It starts with the built-ins
// and accepts additional sets loaded from files.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]*RuleSet
}

// NewRegistry returns a registry holding every built-in rule set
func NewRegistry() *Registry {
	r := &Registry{sets: make(map[string]*RuleSet)}
	for _, name := range BuiltinNames() {
		rules, _ := Builtin(name)
		r.sets[rules.ID()] = rules
	}
	return r
}

// Register validates and adds a rule set, replacing one with the same id
func (r *Registry) Register(rules *RuleSet) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[rules.ID()] = rules
	return nil
}

// Get returns the rule set with the given id
func (r *Registry) Get(id string) (*RuleSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rules, ok := r.sets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRuleSet, id)
	}
	return rules, nil
}

// Engine returns an engine for the rule set with the given id
func (r *Registry) Engine(id string) (*Engine, error) {
	rules, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return NewEngine(rules)
}

// IDs lists registered rule set ids in sorted order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sets))
	for id := range r.sets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

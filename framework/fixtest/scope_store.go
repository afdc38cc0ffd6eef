package fixtest

import (
	"fmt"
	"sync"

	"github.com/fixturelab/fixture-harness/framework"
	"github.com/fixturelab/fixture-harness/framework/opt"
)

// constructedValue is one live fixture value plus the teardown it owes.
type constructedValue struct {
	key      FixtureKey
	value    interface{}
	teardown TeardownFn
}

// globalEntry is the lazy-init cell for one global-scope fixture. The mutex
// makes construction single-writer: exactly one concurrent resolver runs the
// constructor, everyone else blocks on the lock and then observes the same
// value or the same failure.
type globalEntry struct {
	mu    sync.Mutex
	done  bool
	value interface{}
	err   error
}

// ScopeStore owns every cached fixture value for the run. Global values live in
// the store itself; per-case values live in the caseStore handed to each
// executing case. Its two caches are the only shared mutable state in the
// engine.
type ScopeStore struct {
	registry *Registry

	mu          sync.Mutex
	globals     map[FixtureKey]*globalEntry
	globalOrder []constructedValue
}

func NewScopeStore(registry *Registry) *ScopeStore {
	return &ScopeStore{
		registry: registry,
		globals:  make(map[FixtureKey]*globalEntry),
	}
}

// caseStore resolves and caches fixture values for a single in-flight case. It
// is confined to the case's worker goroutine; only global resolution crosses
// into the shared store.
type caseStore struct {
	store    *ScopeStore
	bindings map[FixtureKey]ParamValue
	cached   map[FixtureKey]interface{}
	order    []constructedValue
	logger   framework.Logger
}

func (s *ScopeStore) newCaseStore(c TestCase, logger framework.Logger) *caseStore {
	bindings := make(map[FixtureKey]ParamValue, len(c.Bindings))
	for _, b := range c.Bindings {
		bindings[b.Key] = b.Param
	}
	return &caseStore{
		store:    s,
		bindings: bindings,
		cached:   make(map[FixtureKey]interface{}),
		logger:   logger,
	}
}

// Resolve produces a live value for the key, constructing it and any missing
// dependencies depth-first in declared order. A dependency failure prevents the
// dependent constructor from ever running; the originating error propagates
// unchanged so the requester sees the root cause.
func (cs *caseStore) resolve(key FixtureKey) (interface{}, error) {
	spec, ok := cs.store.registry.Lookup(key)
	if !ok {
		// Collection validates the graph first, so this is unreachable in a
		// normal run.
		return nil, UnknownFixtureError{Key: key, RequiredBy: "resolution"}
	}

	switch spec.Scope {
	case ScopeGlobal:
		return cs.store.resolveGlobal(key, spec, cs.logger)
	case ScopePerCase, ScopeMatrix:
		if v, ok := cs.cached[key]; ok {
			return v, nil
		}
		v, err := cs.construct(spec)
		if err != nil {
			return nil, err
		}
		cs.cached[key] = v
		return v, nil
	default: // ScopeFresh, ScopeMatrixUnique
		return cs.construct(spec)
	}
}

// construct builds one new value in case scope, recording it on the case's
// teardown stack.
func (cs *caseStore) construct(spec *FixtureSpec) (interface{}, error) {
	deps, err := cs.resolveDeps(spec, cs.resolve)
	if err != nil {
		return nil, err
	}
	value, err := invokeConstructor(spec, deps)
	if err != nil {
		return nil, err
	}
	cs.order = append(cs.order, constructedValue{key: spec.Key, value: value, teardown: spec.Teardown})
	return value, nil
}

// resolveDeps resolves a spec's declared dependencies through the given
// resolver and assembles the FixtureDeps handed to the constructor.
func (cs *caseStore) resolveDeps(spec *FixtureSpec, resolver func(FixtureKey) (interface{}, error)) (*FixtureDeps, error) {
	values := make(map[FixtureKey]interface{}, len(spec.Deps))
	for _, dep := range spec.Deps {
		v, err := resolver(dep)
		if err != nil {
			return nil, err
		}
		values[dep] = v
	}
	deps := &FixtureDeps{keys: spec.Deps, values: values, logger: cs.logger}
	if spec.Parametrized() {
		binding, ok := cs.bindings[spec.Key]
		if !ok {
			return nil, FixtureConstructionError{
				Key:   spec.Key,
				Cause: fmt.Errorf("no parameter binding for matrix fixture (case was not expanded over it)"),
			}
		}
		deps.param = opt.Some(binding)
	}
	return deps, nil
}

func invokeConstructor(spec *FixtureSpec, deps *FixtureDeps) (interface{}, error) {
	var value interface{}
	err := runProtected(func() error {
		v, err := spec.Constructor(deps)
		value = v
		return err
	})
	if err != nil {
		return nil, FixtureConstructionError{Key: spec.Key, Cause: err}
	}
	return value, nil
}

// resolveGlobal materializes a global-scope fixture through its lazy-init cell.
// Non-global dependencies constructed on the way are owned by the global scope:
// they are recorded on the run-level teardown stack before their dependent, so
// reverse-order teardown releases the dependent first.
//
// A constructor failure is cached permanently: later requesters receive the
// same error without the constructor re-running, keeping "at most one
// construction per run" unconditional.
func (s *ScopeStore) resolveGlobal(key FixtureKey, spec *FixtureSpec, logger framework.Logger) (interface{}, error) {
	s.mu.Lock()
	entry, ok := s.globals[key]
	if !ok {
		entry = &globalEntry{}
		s.globals[key] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.done {
		return entry.value, entry.err
	}

	var constructed []constructedValue
	resolver := func(dep FixtureKey) (interface{}, error) {
		return s.resolveGlobalDep(dep, &constructed, logger)
	}
	gcs := &caseStore{store: s, logger: logger}
	deps, err := gcs.resolveDeps(spec, resolver)
	var value interface{}
	if err == nil {
		value, err = invokeConstructor(spec, deps)
	}

	entry.done = true
	entry.value = value
	entry.err = err
	if err == nil {
		s.mu.Lock()
		s.globalOrder = append(s.globalOrder,
			append(constructed, constructedValue{key: key, value: value, teardown: spec.Teardown})...)
		s.mu.Unlock()
	} else {
		// The failed fixture owes no teardown, but dependencies that did come up
		// still get torn down at the end of the run.
		s.mu.Lock()
		s.globalOrder = append(s.globalOrder, constructed...)
		s.mu.Unlock()
	}
	return entry.value, entry.err
}

// resolveGlobalDep resolves a dependency requested during a global fixture's
// construction. Globals chain through the store; anything else is constructed
// fresh and owned by the run-level stack.
func (s *ScopeStore) resolveGlobalDep(key FixtureKey, sink *[]constructedValue, logger framework.Logger) (interface{}, error) {
	spec, ok := s.registry.Lookup(key)
	if !ok {
		return nil, UnknownFixtureError{Key: key, RequiredBy: "resolution"}
	}
	if spec.Scope == ScopeGlobal {
		return s.resolveGlobal(key, spec, logger)
	}
	gcs := &caseStore{store: s, logger: logger}
	deps, err := gcs.resolveDeps(spec, func(dep FixtureKey) (interface{}, error) {
		return s.resolveGlobalDep(dep, sink, logger)
	})
	if err != nil {
		return nil, err
	}
	value, err := invokeConstructor(spec, deps)
	if err != nil {
		return nil, err
	}
	*sink = append(*sink, constructedValue{key: key, value: value, teardown: spec.Teardown})
	return value, nil
}

// teardownAll releases every value on the stack in exact reverse construction
// order. Every callback runs inside the capture boundary; a failure is reported
// through report and the remaining teardowns still run.
func teardownAll(stack []constructedValue, report func(error)) {
	for i := len(stack) - 1; i >= 0; i-- {
		cv := stack[i]
		if cv.teardown == nil {
			continue
		}
		err := runProtected(func() error { return cv.teardown(cv.value) })
		if err != nil {
			report(TeardownError{Key: cv.key, Cause: err})
		}
	}
}

// teardownAll releases everything this case constructed, newest first. Called
// at the end of the case regardless of its outcome, including after a panicking
// body or a failed setup.
func (cs *caseStore) teardownAll(report func(error)) {
	teardownAll(cs.order, report)
	cs.order = nil
}

// TeardownGlobal releases every global-scope value in reverse creation order.
// The engine calls it exactly once, after the last case has finished.
func (s *ScopeStore) TeardownGlobal(report func(error)) {
	s.mu.Lock()
	stack := s.globalOrder
	s.globalOrder = nil
	s.mu.Unlock()
	teardownAll(stack, report)
}

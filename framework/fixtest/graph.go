package fixtest

import "golang.org/x/exp/slices"

// Graph is the validated dependency graph over all registered fixtures and test
// definitions. Building it is purely structural: no constructor is invoked, so
// collection can run (and the case list can be printed) with no side effects.
type Graph struct {
	registry *Registry

	// closures maps each fixture key to its transitive set of required fixtures,
	// in dependency-first order ending with the key itself.
	closures map[FixtureKey][]FixtureKey
}

const (
	nodeWhite = iota // not visited
	nodeGray         // on the current DFS path
	nodeBlack        // fully resolved
)

// BuildGraph validates the registry against the given test definitions and
// computes the transitive fixture closure for every node. It reports the first
// structural error found: an unknown fixture, a dependency cycle (naming the
// cycle), or an unsatisfied capability bound.
func BuildGraph(registry *Registry, defs []TestDefinition) (*Graph, error) {
	g := &Graph{
		registry: registry,
		closures: make(map[FixtureKey][]FixtureKey),
	}
	state := make(map[FixtureKey]int)
	var path []FixtureKey

	var visit func(key FixtureKey, requiredBy string) error
	visit = func(key FixtureKey, requiredBy string) error {
		spec, ok := registry.Lookup(key)
		if !ok {
			return UnknownFixtureError{Key: key, RequiredBy: requiredBy}
		}
		switch state[key] {
		case nodeBlack:
			return nil
		case nodeGray:
			return CyclicDependencyError{Cycle: cycleFrom(path, key)}
		}
		state[key] = nodeGray
		path = append(path, key)

		if spec.Requires != "" {
			if err := checkCapability(registry, spec); err != nil {
				return err
			}
		}
		var closure []FixtureKey
		for _, dep := range spec.Deps {
			if err := visit(dep, key.String()); err != nil {
				return err
			}
			closure = mergeClosure(closure, g.closures[dep])
		}
		g.closures[key] = append(closure, key)

		path = path[:len(path)-1]
		state[key] = nodeBlack
		return nil
	}

	// Walk from every registered fixture, not just the ones tests reach, so a
	// broken registry is always diagnosed at collection time.
	for _, key := range registry.Keys() {
		if err := visit(key, "registry"); err != nil {
			return nil, err
		}
	}
	for _, def := range defs {
		for _, key := range def.Fixtures {
			if err := visit(key, def.Name); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// FixtureClosure returns the transitive set of fixtures needed to construct the
// given fixture, dependencies first, ending with the fixture itself.
func (g *Graph) FixtureClosure(key FixtureKey) []FixtureKey {
	return g.closures[key]
}

// DefinitionClosure returns the transitive set of fixtures that must be live for
// a definition's body to run, in dependency-first order.
func (g *Graph) DefinitionClosure(def TestDefinition) []FixtureKey {
	var closure []FixtureKey
	for _, key := range def.Fixtures {
		closure = mergeClosure(closure, g.closures[key])
	}
	return closure
}

func checkCapability(registry *Registry, spec *FixtureSpec) error {
	arg := spec.Deps[0]
	argSpec, ok := registry.Lookup(arg)
	if !ok {
		return UnknownFixtureError{Key: arg, RequiredBy: spec.Key.String()}
	}
	if slices.Contains(argSpec.Provides, spec.Requires) {
		return nil
	}
	return TypeMismatchError{
		Key:      spec.Key,
		Arg:      arg,
		Expected: spec.Requires,
		Found:    argSpec.Provides,
	}
}

// cycleFrom trims the DFS path to the portion that forms the cycle and closes it
// by repeating the offending key.
func cycleFrom(path []FixtureKey, key FixtureKey) []FixtureKey {
	start := 0
	for i, k := range path {
		if k == key {
			start = i
			break
		}
	}
	cycle := append([]FixtureKey(nil), path[start:]...)
	return append(cycle, key)
}

// mergeClosure appends the elements of addition not already present, preserving
// first-occurrence order so dependencies always precede their dependents.
func mergeClosure(base, addition []FixtureKey) []FixtureKey {
	seen := make(map[FixtureKey]bool, len(base))
	for _, k := range base {
		seen[k] = true
	}
	for _, k := range addition {
		if !seen[k] {
			base = append(base, k)
			seen[k] = true
		}
	}
	return base
}

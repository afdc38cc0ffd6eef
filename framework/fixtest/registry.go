package fixtest

import (
	"fmt"

	"github.com/fixturelab/fixture-harness/framework"
	"github.com/fixturelab/fixture-harness/framework/helpers"
	"github.com/fixturelab/fixture-harness/framework/opt"
)

// ConstructorFn builds a fixture value from its already-resolved dependencies.
type ConstructorFn func(deps *FixtureDeps) (interface{}, error)

// TeardownFn releases a fixture value when its owning scope ends.
type TeardownFn func(value interface{}) error

// FixtureSpec is the static definition of a fixture. Specs are registered once at
// startup and are immutable for the rest of the run.
type FixtureSpec struct {
	Key         FixtureKey
	Scope       Scope
	Deps        []FixtureKey
	Constructor ConstructorFn
	Teardown    TeardownFn

	// Params is the parameter domain for matrix-scoped fixtures. Its presence
	// means the fixture is expanded into one independent case per value.
	Params []ParamValue

	// Provides lists capability names this fixture satisfies, for use as the
	// argument of a generic fixture template.
	Provides []string

	// Requires names the capability that the first dependency must provide. It is
	// set by Template.Bind and checked structurally by the graph builder.
	Requires string
}

// Parametrized reports whether the spec carries a parameter domain.
func (s *FixtureSpec) Parametrized() bool { return len(s.Params) > 0 }

// FixtureOption is a configuration option for declaring a FixtureSpec.
type FixtureOption helpers.ConfigOption[FixtureSpec]

type fixtureOptionFunc func(*FixtureSpec) error

func (f fixtureOptionFunc) Configure(s *FixtureSpec) error { return f(s) }

// WithScope sets the fixture's scope. The default is ScopeFresh.
func WithScope(scope Scope) FixtureOption {
	return fixtureOptionFunc(func(s *FixtureSpec) error {
		s.Scope = scope
		return nil
	})
}

// WithDeps declares the fixture's dependencies, in the order the constructor
// expects them.
func WithDeps(keys ...FixtureKey) FixtureOption {
	return fixtureOptionFunc(func(s *FixtureSpec) error {
		s.Deps = append(s.Deps, keys...)
		return nil
	})
}

// WithTeardown sets the fixture's teardown callback.
func WithTeardown(fn TeardownFn) FixtureOption {
	return fixtureOptionFunc(func(s *FixtureSpec) error {
		s.Teardown = fn
		return nil
	})
}

// WithParams declares the fixture's parameter domain and makes it matrix-scoped
// (shared within each expanded case) unless another matrix scope was set.
func WithParams(values ...interface{}) FixtureOption {
	return fixtureOptionFunc(func(s *FixtureSpec) error {
		s.Params = append(s.Params, Params(values...)...)
		if !s.Scope.parametrized() {
			s.Scope = ScopeMatrix
		}
		return nil
	})
}

// WithParamValues is WithParams for pre-labeled values.
func WithParamValues(values ...ParamValue) FixtureOption {
	return fixtureOptionFunc(func(s *FixtureSpec) error {
		s.Params = append(s.Params, values...)
		if !s.Scope.parametrized() {
			s.Scope = ScopeMatrix
		}
		return nil
	})
}

// WithProvides declares capability names this fixture satisfies.
func WithProvides(capabilities ...string) FixtureOption {
	return fixtureOptionFunc(func(s *FixtureSpec) error {
		s.Provides = append(s.Provides, capabilities...)
		return nil
	})
}

// NewFixture builds a FixtureSpec for registration.
func NewFixture(name string, ctor ConstructorFn, options ...FixtureOption) (FixtureSpec, error) {
	spec := FixtureSpec{Key: Key(name), Scope: ScopeFresh, Constructor: ctor}
	if err := helpers.ApplyOptions(&spec, options...); err != nil {
		return FixtureSpec{}, err
	}
	return spec, validateSpec(&spec)
}

func validateSpec(s *FixtureSpec) error {
	if s.Key.Name == "" {
		return fmt.Errorf("fixture must have a name")
	}
	if s.Constructor == nil {
		return fmt.Errorf("fixture %q must have a constructor", s.Key)
	}
	if s.Scope.parametrized() && len(s.Params) == 0 {
		return fmt.Errorf("fixture %q has scope %s but no parameter domain", s.Key, s.Scope)
	}
	if !s.Scope.parametrized() && len(s.Params) > 0 {
		return fmt.Errorf("fixture %q has a parameter domain but scope %s", s.Key, s.Scope)
	}
	return nil
}

// Template is a generic fixture definition: a fixture polymorphic over any
// fixture providing a named capability. Bind materializes one concrete
// FixtureSpec per distinct instantiation; the bound fixture becomes the first
// dependency, reachable from the constructor as deps.Dep(0).
type Template struct {
	Name        string
	Scope       Scope
	Requires    string // capability the bound fixture must provide
	ExtraDeps   []FixtureKey
	Constructor ConstructorFn
	Teardown    TeardownFn
}

// Bind instantiates the template over the given fixture key. The resulting key
// is distinct per argument, so Bind(a) and Bind(b) are independent fixtures.
func (t Template) Bind(arg FixtureKey) FixtureSpec {
	return FixtureSpec{
		Key:         FixtureKey{Name: t.Name, TypeArg: arg.String()},
		Scope:       t.Scope,
		Deps:        append([]FixtureKey{arg}, t.ExtraDeps...),
		Constructor: t.Constructor,
		Teardown:    t.Teardown,
		Requires:    t.Requires,
	}
}

// Registry is the static mapping from fixture key to definition. It is populated
// during registration and read-only afterwards; the engine never mutates it.
type Registry struct {
	specs map[FixtureKey]*FixtureSpec
	order []FixtureKey
}

func NewRegistry() *Registry {
	return &Registry{specs: make(map[FixtureKey]*FixtureSpec)}
}

// Register validates and adds a spec. Registering the same key twice is an
// error, with one exception: re-binding a template to the same argument yields
// the identical spec and is a no-op, since distinct call sites may legitimately
// instantiate the same combination.
func (r *Registry) Register(spec FixtureSpec) error {
	if err := validateSpec(&spec); err != nil {
		return err
	}
	if _, ok := r.specs[spec.Key]; ok {
		if spec.Key.TypeArg != "" {
			return nil
		}
		return fmt.Errorf("fixture %q is already registered", spec.Key)
	}
	r.specs[spec.Key] = &spec
	r.order = append(r.order, spec.Key)
	return nil
}

// MustRegister is Register for static declarations where a failure is a
// programming error.
func (r *Registry) MustRegister(spec FixtureSpec) FixtureKey {
	if err := r.Register(spec); err != nil {
		panic(err)
	}
	return spec.Key
}

// Lookup returns the spec for a key, if one is registered.
func (r *Registry) Lookup(key FixtureKey) (*FixtureSpec, bool) {
	spec, ok := r.specs[key]
	return spec, ok
}

// Keys returns all registered keys in registration order.
func (r *Registry) Keys() []FixtureKey {
	return append([]FixtureKey(nil), r.order...)
}

// FixtureDeps gives a constructor access to its resolved dependency values, its
// bound parameter (for matrix fixtures), and a logger whose output is captured
// with the requesting case.
type FixtureDeps struct {
	keys   []FixtureKey
	values map[FixtureKey]interface{}
	param  opt.Maybe[ParamValue]
	logger framework.Logger
}

// Get returns the resolved value of a declared dependency. Requesting a key the
// spec did not declare is a programming error and fails the construction.
func (d *FixtureDeps) Get(key FixtureKey) interface{} {
	v, ok := d.values[key]
	if !ok {
		panic(fmt.Sprintf("fixture constructor requested undeclared dependency %q", key))
	}
	return v
}

// Dep returns the resolved value of the i'th declared dependency. Templates use
// Dep(0) to reach the fixture they were bound to.
func (d *FixtureDeps) Dep(i int) interface{} {
	if i < 0 || i >= len(d.keys) {
		panic(fmt.Sprintf("fixture constructor requested dependency #%d of %d", i, len(d.keys)))
	}
	return d.values[d.keys[i]]
}

// Param returns the value bound to a matrix fixture for the current expanded
// case. Calling it from a non-parametrized fixture fails the construction.
func (d *FixtureDeps) Param() interface{} {
	if !d.param.IsDefined() {
		panic("fixture constructor requested a parameter but the fixture is not parametrized")
	}
	return d.param.Value().Value
}

// ParamLabel returns the label of the bound parameter value.
func (d *FixtureDeps) ParamLabel() string {
	return d.param.Value().Label
}

// Logger returns a logger whose output is captured as debug output of the case
// being set up.
func (d *FixtureDeps) Logger() framework.Logger {
	if d.logger == nil {
		return framework.NullLogger()
	}
	return d.logger
}

// Package enginetests defines the self-check suite that the fixture-harness
// binary executes. The suite exercises every scope, matrix expansion, expected
// failures, and the bundled fixtures against itself, so a run of the binary
// doubles as an end-to-end verification of the engine.
package enginetests

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixturelab/fixture-harness/fixtures"
	"github.com/fixturelab/fixture-harness/framework/fixtest"
	"github.com/fixturelab/fixture-harness/framework/opt"
	"github.com/fixturelab/fixture-harness/testmodel"
)

// SuiteConfig selects which parts of the suite can run. Service-backed tests
// are skipped, not failed, when no address is configured for their service.
type SuiteConfig struct {
	Services testmodel.ServiceAddresses
}

// Suite is the fully declared fixture registry and test list, ready to collect.
type Suite struct {
	Registry    *fixtest.Registry
	Definitions []fixtest.TestDefinition
}

// RunSuite collects and executes the whole suite.
func RunSuite(config SuiteConfig, runConfig fixtest.RunConfig) (fixtest.Results, error) {
	suite, err := BuildSuite(config)
	if err != nil {
		return fixtest.Results{}, err
	}
	plan, err := fixtest.Collect(suite.Registry, suite.Definitions)
	if err != nil {
		return fixtest.Results{}, err
	}
	return plan.Run(runConfig), nil
}

// BuildSuite declares all fixtures and test definitions without running
// anything.
func BuildSuite(config SuiteConfig) (*Suite, error) {
	s := &Suite{Registry: fixtest.NewRegistry()}

	for _, declare := range []func(SuiteConfig) error{
		s.declareScopeTests,
		s.declareMatrixTests,
		s.declareOutcomeTests,
		s.declareFileFixtureTests,
		s.declareHTTPTests,
		s.declareServiceTests,
	} {
		if err := declare(config); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Suite) add(def fixtest.TestDefinition) {
	s.Definitions = append(s.Definitions, def)
}

// skipUnless produces the skip reason for a service-backed test when its
// address is not configured.
func skipUnless(address, service string) opt.Maybe[string] {
	if address != "" {
		return opt.None[string]()
	}
	return opt.Some(fmt.Sprintf("no %s address configured", service))
}

func (s *Suite) declareScopeTests(config SuiteConfig) error {
	var counter int32
	next, err := fixtest.NewFixture("scope counter",
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			return int(atomic.AddInt32(&counter, 1)), nil
		},
		fixtest.WithScope(fixtest.ScopePerCase))
	if err != nil {
		return err
	}
	if err := s.Registry.Register(next); err != nil {
		return err
	}

	reader, err := fixtest.NewFixture("counter reader",
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			return deps.Get(fixtest.Key("scope counter")), nil
		},
		fixtest.WithDeps(fixtest.Key("scope counter")))
	if err != nil {
		return err
	}
	if err := s.Registry.Register(reader); err != nil {
		return err
	}

	var runToken int32
	global, err := fixtest.NewFixture("run token",
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			return int(atomic.AddInt32(&runToken, 1)), nil
		},
		fixtest.WithScope(fixtest.ScopeGlobal))
	if err != nil {
		return err
	}
	if err := s.Registry.Register(global); err != nil {
		return err
	}

	s.add(fixtest.TestDefinition{
		Name:     "per-case fixtures are shared within a case",
		Fixtures: []fixtest.FixtureKey{fixtest.Key("scope counter"), fixtest.Key("counter reader")},
		Body: func(t *fixtest.T) {
			direct := t.Fixture(fixtest.Key("scope counter"))
			indirect := t.Fixture(fixtest.Key("counter reader"))
			assert.Equal(t, direct, indirect)
		},
	})
	s.add(fixtest.TestDefinition{
		Name:     "global fixtures are shared across cases (first)",
		Fixtures: []fixtest.FixtureKey{fixtest.Key("run token")},
		Body: func(t *fixtest.T) {
			assert.Equal(t, 1, t.Fixture(fixtest.Key("run token")))
		},
	})
	s.add(fixtest.TestDefinition{
		Name:     "global fixtures are shared across cases (second)",
		Fixtures: []fixtest.FixtureKey{fixtest.Key("run token")},
		Body: func(t *fixtest.T) {
			assert.Equal(t, 1, t.Fixture(fixtest.Key("run token")))
		},
	})
	return nil
}

func (s *Suite) declareMatrixTests(config SuiteConfig) error {
	port, err := fixtest.NewFixture("port",
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			return deps.Param(), nil
		},
		fixtest.WithParams(1, 5))
	if err != nil {
		return err
	}
	if err := s.Registry.Register(port); err != nil {
		return err
	}

	mode, err := fixtest.NewFixture("mode",
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			return deps.Param(), nil
		},
		fixtest.WithParamValues(
			fixtest.NamedParam("polling", "polling"),
			fixtest.NamedParam("streaming", "streaming"),
		))
	if err != nil {
		return err
	}
	if err := s.Registry.Register(mode); err != nil {
		return err
	}

	s.add(fixtest.TestDefinition{
		Name:     "matrix fixture binds one value per case",
		Fixtures: []fixtest.FixtureKey{fixtest.Key("port")},
		Body: func(t *fixtest.T) {
			v := t.Fixture(fixtest.Key("port")).(int)
			assert.Contains(t, []int{1, 5}, v)
			assert.Equal(t, v, t.Param(fixtest.Key("port")))
		},
	})
	s.add(fixtest.TestDefinition{
		Name:     "matrix cross product covers every combination",
		Fixtures: []fixtest.FixtureKey{fixtest.Key("port"), fixtest.Key("mode")},
		Body: func(t *fixtest.T) {
			assert.Contains(t, []int{1, 5}, t.Fixture(fixtest.Key("port")).(int))
			assert.Contains(t, []string{"polling", "streaming"}, t.Fixture(fixtest.Key("mode")).(string))
		},
	})
	return nil
}

func (s *Suite) declareOutcomeTests(config SuiteConfig) error {
	s.add(fixtest.TestDefinition{
		Name:          "known failure is reported as expected",
		ExpectFailure: true,
		Body: func(t *fixtest.T) {
			t.Errorf("this failure is intentional")
			t.FailNow()
		},
	})
	s.add(fixtest.TestDefinition{
		Name:          "known panic is reported as expected",
		ExpectFailure: true,
		Body: func(t *fixtest.T) {
			panic("this panic is intentional")
		},
	})
	s.add(fixtest.TestDefinition{
		Name: "body cleanups run in reverse order",
		Body: func(t *fixtest.T) {
			var order []string
			t.Defer(func() {
				assert.Equal(t, []string{"second"}, order)
			})
			t.Defer(func() { order = append(order, "second") })
		},
	})
	return nil
}

func (s *Suite) declareFileFixtureTests(config SuiteConfig) error {
	if err := fixtures.RegisterTempDir(s.Registry); err != nil {
		return err
	}
	if err := fixtures.RegisterTempFile(s.Registry); err != nil {
		return err
	}

	s.add(fixtest.TestDefinition{
		Name:     "temp dir is writable and cleaned up",
		Fixtures: []fixtest.FixtureKey{fixtures.TempDirKey},
		Body: func(t *fixtest.T) {
			dir := t.Fixture(fixtures.TempDirKey).(string)
			path, err := fixtures.WriteTempFile(dir, "probe.txt", []byte("ok"))
			require.NoError(t, err)
			data, err := os.ReadFile(path) //nolint:gosec
			require.NoError(t, err)
			assert.Equal(t, "ok", string(data))
		},
	})
	s.add(fixtest.TestDefinition{
		Name:     "temp file exists inside a temp dir",
		Fixtures: []fixtest.FixtureKey{fixtures.TempFileKey},
		Body: func(t *fixtest.T) {
			path := t.Fixture(fixtures.TempFileKey).(string)
			assert.FileExists(t, path)
		},
	})
	return nil
}

func (s *Suite) declareHTTPTests(config SuiteConfig) error {
	if err := fixtures.RegisterHTTPServer(s.Registry); err != nil {
		return err
	}

	s.add(fixtest.TestDefinition{
		Name:     "http server round trip",
		Fixtures: []fixtest.FixtureKey{fixtures.HTTPServerKey},
		Body: func(t *fixtest.T) {
			server := t.Fixture(fixtures.HTTPServerKey).(*fixtures.HTTPServer)
			server.Router.HandleFunc("/echo/{word}", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(r.URL.Path))
			})
			resp, err := http.Get(server.URLFor("/echo/hello"))
			require.NoError(t, err)
			t.Defer(func() { _ = resp.Body.Close() })
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		},
	})
	return nil
}

func (s *Suite) declareServiceTests(config SuiteConfig) error {
	services := config.Services

	if services.Redis != "" {
		if err := fixtures.RegisterRedis(s.Registry, services.Redis); err != nil {
			return err
		}
	}
	if services.Consul != "" {
		if err := fixtures.RegisterConsul(s.Registry, services.Consul); err != nil {
			return err
		}
	}
	if services.DynamoDB != "" {
		if err := fixtures.RegisterDynamoDB(s.Registry, services.DynamoDB); err != nil {
			return err
		}
	}

	redisDef := fixtest.TestDefinition{
		Name:       "redis round trip",
		SkipReason: skipUnless(services.Redis, "Redis"),
		Body: func(t *fixtest.T) {
			store := t.Fixture(fixtures.RedisKey).(*fixtures.RedisStore)
			ctx := context.Background()
			require.NoError(t, store.Reset(ctx))
			require.NoError(t, store.WriteData(ctx, "flags", map[string]string{"a": "1"}))
			data, err := store.ReadData(ctx, "flags")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"a": "1"}, data)
		},
	}
	if services.Redis != "" {
		redisDef.Fixtures = []fixtest.FixtureKey{fixtures.RedisKey}
	}
	s.add(redisDef)

	consulDef := fixtest.TestDefinition{
		Name:       "consul round trip",
		SkipReason: skipUnless(services.Consul, "Consul"),
		Body: func(t *fixtest.T) {
			store := t.Fixture(fixtures.ConsulKey).(*fixtures.ConsulStore)
			require.NoError(t, store.Reset())
			require.NoError(t, store.WriteMap("tests", "flags", map[string]string{"a": "1"}))
			value, err := store.Get("tests", "flags/a")
			require.NoError(t, err)
			require.True(t, value.IsDefined())
			assert.Equal(t, "1", value.Value())
		},
	}
	if services.Consul != "" {
		consulDef.Fixtures = []fixtest.FixtureKey{fixtures.ConsulKey}
	}
	s.add(consulDef)

	dynamoDef := fixtest.TestDefinition{
		Name:       "dynamodb round trip",
		SkipReason: skipUnless(services.DynamoDB, "DynamoDB"),
		Body: func(t *fixtest.T) {
			store := t.Fixture(fixtures.DynamoDBKey).(*fixtures.DynamoDBStore)
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "tests", "a", "1"))
			value, found, err := store.Get(ctx, "tests", "a")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "1", value)
		},
	}
	if services.DynamoDB != "" {
		dynamoDef.Fixtures = []fixtest.FixtureKey{fixtures.DynamoDBKey}
	}
	s.add(dynamoDef)

	return nil
}

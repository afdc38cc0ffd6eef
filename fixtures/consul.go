package fixtures

import (
	"fmt"
	"strings"

	consul "github.com/hashicorp/consul/api"

	"github.com/fixturelab/fixture-harness/framework/fixtest"
	o "github.com/fixturelab/fixture-harness/framework/opt"
)

// ConsulKey identifies the Consul client fixture. Its value is a *ConsulStore,
// global-scoped like the other external-service fixtures.
var ConsulKey = fixtest.Key("consul")

// ConsulStore wraps a Consul client with KV helpers for the test suites.
type ConsulStore struct {
	Client *consul.Client

	address string
}

func (c *ConsulStore) DSN() string {
	return c.address
}

// Reset removes every key so that cases sharing the global client start clean.
func (c *ConsulStore) Reset() error {
	_, err := c.Client.KV().DeleteTree("/", nil)
	return err
}

func (c *ConsulStore) Get(prefix, key string) (o.Maybe[string], error) {
	pair, _, err := c.Client.KV().Get(prefix+"/"+key, nil)
	if err != nil || pair == nil {
		return o.None[string](), err
	}
	return o.Some(string(pair.Value)), nil
}

// WriteMap stores each entry of data under prefix/key/, batching the writes
// into transactions. Consul limits a transaction to 64 operations, so larger
// maps are split across several.
func (c *ConsulStore) WriteMap(prefix, key string, data map[string]string) error {
	kv := c.Client.KV()
	ops := make([]*consul.KVTxnOp, 0, len(data))
	for k, v := range data {
		ops = append(ops, &consul.KVTxnOp{
			Verb:  consul.KVSet,
			Key:   prefix + "/" + key + "/" + k,
			Value: []byte(v),
		})
	}
	for i := 0; i < len(ops); {
		j := i + 64
		if j > len(ops) {
			j = len(ops)
		}
		ok, resp, _, err := kv.Txn(ops[i:j], nil)
		if err != nil {
			return err
		}
		if !ok {
			errs := make([]string, 0)
			for _, te := range resp.Errors {
				errs = append(errs, te.What)
			}
			//nolint:stylecheck // this error message is capitalized on purpose
			return fmt.Errorf("Consul transaction failed: %s", strings.Join(errs, ", "))
		}
		i = j
	}
	return nil
}

// RegisterConsul adds the Consul fixture for the given address, e.g.
// "localhost:8500".
func RegisterConsul(reg *fixtest.Registry, address string) error {
	spec, err := fixtest.NewFixture(ConsulKey.Name,
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			config := consul.DefaultConfig()
			config.Address = address
			client, err := consul.NewClient(config)
			if err != nil {
				return nil, err
			}
			// DefaultConfig never fails to build a client; probe the agent so an
			// unreachable address fails the dependent cases at setup.
			if _, err := client.Status().Leader(); err != nil {
				return nil, fmt.Errorf("cannot reach Consul at %s: %w", address, err)
			}
			deps.Logger().Printf("connected to Consul at %s", address)
			return &ConsulStore{Client: client, address: address}, nil
		},
		fixtest.WithScope(fixtest.ScopeGlobal),
		fixtest.WithTeardown(func(value interface{}) error {
			return value.(*ConsulStore).Reset()
		}))
	if err != nil {
		return err
	}
	return reg.Register(spec)
}

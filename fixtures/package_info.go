// Package fixtures provides ready-made fixture definitions for common test
// resources: temporary files and directories, an embedded HTTP server, and
// clients for external backing services (Redis, Consul, DynamoDB).
//
// Each resource comes as a Register function that adds its FixtureSpec to a
// registry, plus an exported key for declaring it as a test or fixture
// dependency.
package fixtures

// Package framework provides basic shared infrastructure for the fixture harness,
// such as logging primitives used by both the engine and the bundled fixtures.
package framework

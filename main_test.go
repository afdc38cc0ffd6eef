package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fixturelab/fixture-harness/framework/fixtest"
	"github.com/fixturelab/fixture-harness/framework/opt"
)

func TestCaseListLine(t *testing.T) {
	plain := fixtest.TestCase{
		ID:  fixtest.TestID{"test_a", "p=1"},
		Def: fixtest.TestDefinition{Name: "test_a"},
	}
	assert.Equal(t, "test_a[p=1]", caseListLine(plain))

	xfail := fixtest.TestCase{
		ID:  fixtest.TestID{"test_b"},
		Def: fixtest.TestDefinition{Name: "test_b", ExpectFailure: true},
	}
	assert.Equal(t, "test_b (expected failure)", caseListLine(xfail))

	skipped := fixtest.TestCase{
		ID: fixtest.TestID{"test_c"},
		Def: fixtest.TestDefinition{
			Name:       "test_c",
			SkipReason: opt.Some("flaky upstream"),
		},
	}
	assert.Equal(t, "test_c (skipped: flaky upstream)", caseListLine(skipped))
}

package main

import (
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"os"
	"strings"

	"github.com/fixturelab/fixture-harness/enginetests"
	"github.com/fixturelab/fixture-harness/framework/fixtest"
	"github.com/fixturelab/fixture-harness/testmodel"
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("fixture-harness v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	results, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if results != nil && !results.OK() {
		os.Exit(1)
	}
}

func run(params commandParams) (*fixtest.Results, error) {
	var fileConfig testmodel.RunConfig
	if params.configFile != "" {
		var err error
		fileConfig, err = testmodel.LoadRunConfig(params.configFile)
		if err != nil {
			return nil, err
		}
		if err := fileConfig.AddFilters(&params.filters); err != nil {
			return nil, err
		}
	}
	if params.skipFile != "" {
		if err := testmodel.LoadSuppressions(params.skipFile, &params.filters); err != nil {
			return nil, err
		}
	}
	applyFileDefaults(&params, fileConfig)

	suiteConfig := enginetests.SuiteConfig{
		Services: testmodel.ServiceAddresses{
			Redis:    params.redisAddress,
			Consul:   params.consulAddress,
			DynamoDB: params.dynamoEndpoint,
		},
	}

	if params.list {
		suite, err := enginetests.BuildSuite(suiteConfig)
		if err != nil {
			return nil, err
		}
		plan, err := fixtest.Collect(suite.Registry, suite.Definitions)
		if err != nil {
			return nil, err
		}
		for _, c := range plan.Cases() {
			if params.filters.Match(c.ID) {
				fmt.Println(caseListLine(c))
			}
		}
		return nil, nil
	}

	fixtest.PrintFilterDescription(params.filters)

	var testLogger fixtest.TestLogger
	consoleLogger := fixtest.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	if params.jUnitFile == "" {
		testLogger = consoleLogger
	} else {
		testLogger = &fixtest.MultiTestLogger{Loggers: []fixtest.TestLogger{
			consoleLogger,
			fixtest.NewJUnitTestLogger(params.jUnitFile, params.filters),
		}}
	}

	results, err := enginetests.RunSuite(suiteConfig, fixtest.RunConfig{
		Filter:      params.filters.AsFilter(),
		TestLogger:  testLogger,
		Parallelism: params.parallelism,
	})
	if err != nil {
		return nil, err
	}

	fmt.Println()
	logErr := testLogger.EndLog(results)
	fixtest.PrintResults(results)

	if logErr != nil {
		return nil, fmt.Errorf("error writing log: %v", logErr)
	}

	if params.recordFailures != "" {
		f, err := os.Create(params.recordFailures)
		if err != nil {
			return nil, fmt.Errorf("cannot create suppression file: %v", err)
		}
		for _, test := range results.Failures {
			fmt.Fprintln(f, test.ID)
		}
		_ = f.Close()
	}

	return &results, nil
}

// caseListLine formats one collected case for -list output, annotating cases
// that will not run normally.
func caseListLine(c fixtest.TestCase) string {
	line := c.Name()
	if c.Def.SkipReason.IsDefined() {
		line += fmt.Sprintf(" (skipped: %s)", c.Def.SkipReason.Value())
	}
	if c.Def.ExpectFailure {
		line += " (expected failure)"
	}
	return line
}

// applyFileDefaults fills in any setting the command line left at its default
// from the config file.
func applyFileDefaults(params *commandParams, fileConfig testmodel.RunConfig) {
	if params.jUnitFile == "" {
		params.jUnitFile = fileConfig.JUnitFile
	}
	if params.recordFailures == "" {
		params.recordFailures = fileConfig.RecordFailures
	}
	if params.parallelism <= 1 && fileConfig.Parallelism > 0 {
		params.parallelism = fileConfig.Parallelism
	}
	params.debug = params.debug || fileConfig.Debug
	params.debugAll = params.debugAll || fileConfig.DebugAll
	if params.redisAddress == "" {
		params.redisAddress = fileConfig.Services.Redis
	}
	if params.consulAddress == "" {
		params.consulAddress = fileConfig.Services.Consul
	}
	if params.dynamoEndpoint == "" {
		params.dynamoEndpoint = fileConfig.Services.DynamoDB
	}
}

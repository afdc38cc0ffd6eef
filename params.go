package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fixturelab/fixture-harness/framework/fixtest"
)

type commandParams struct {
	filters        fixtest.RegexFilters
	configFile     string
	skipFile       string
	recordFailures string
	jUnitFile      string
	parallelism    int
	list           bool
	debug          bool
	debugAll       bool
	redisAddress   string
	consulAddress  string
	dynamoEndpoint string
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.configFile, "config", "", "load run options from the specified YAML file")
	fs.StringVar(&c.skipFile, "skip-file", "", "file with one test ID per line to suppress")
	fs.StringVar(&c.recordFailures, "record-failures", "", "write failed test IDs to the specified path, suitable for -skip-file")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.IntVar(&c.parallelism, "parallel", 1, "number of tests to run concurrently")
	fs.BoolVar(&c.list, "list", false, "list the tests that would run, without running them")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.redisAddress, "redis", "", "address of a Redis server for the Redis tests")
	fs.StringVar(&c.consulAddress, "consul", "", "address of a Consul agent for the Consul tests")
	fs.StringVar(&c.dynamoEndpoint, "dynamodb", "", "endpoint URL of a DynamoDB instance for the DynamoDB tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.parallelism < 1 {
		fmt.Fprintln(os.Stderr, "-parallel must be at least 1")
		fs.Usage()
		return false
	}
	return true
}

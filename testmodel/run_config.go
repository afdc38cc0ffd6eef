package testmodel

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/fixturelab/fixture-harness/framework/fixtest"
)

// RunConfig is the file-based equivalent of the command line parameters. Any
// value given on the command line takes precedence over the file.
type RunConfig struct {
	// Run and Skip are test ID regex patterns, same as the -run and -skip options.
	Run  []string `yaml:"run"`
	Skip []string `yaml:"skip"`

	// Parallelism is the number of cases executing concurrently.
	Parallelism int `yaml:"parallelism"`

	JUnitFile      string `yaml:"junit"`
	RecordFailures string `yaml:"recordFailures"`

	Debug    bool `yaml:"debug"`
	DebugAll bool `yaml:"debugAll"`

	Services ServiceAddresses `yaml:"services"`
}

// ServiceAddresses points the external-service fixtures at real backing
// services. A fixture whose address is left empty reports its cases as skipped.
type ServiceAddresses struct {
	Redis    string `yaml:"redis"`
	Consul   string `yaml:"consul"`
	DynamoDB string `yaml:"dynamodb"`
}

// LoadRunConfig reads and validates a YAML run configuration file. Unknown
// properties are rejected so that a typo cannot silently disable a setting.
func LoadRunConfig(path string) (RunConfig, error) {
	var c RunConfig
	data, err := os.ReadFile(path) //nolint:gosec // yes, we know the file path is a variable
	if err != nil {
		return c, fmt.Errorf("failed to read %q: %w", path, err)
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("error parsing %q: %w", path, err)
	}
	if c.Parallelism < 0 {
		return c, fmt.Errorf("error in %q: parallelism must not be negative", path)
	}
	for _, p := range append(append([]string(nil), c.Run...), c.Skip...) {
		if _, err := fixtest.ParseTestIDPattern(p); err != nil {
			return c, fmt.Errorf("error in %q: %w", path, err)
		}
	}
	return c, nil
}

// AddFilters appends the file's run/skip patterns to the given filters, after
// any patterns the command line already set.
func (c RunConfig) AddFilters(filters *fixtest.RegexFilters) error {
	for _, p := range c.Run {
		if err := filters.MustMatch.Set(p); err != nil {
			return err
		}
	}
	for _, p := range c.Skip {
		if err := filters.MustNotMatch.Set(p); err != nil {
			return err
		}
	}
	return nil
}

// LoadSuppressions reads a plain-text suppression file, one test ID per line as
// printed in a failure list or a recordFailures file, and adds each line as a
// literal must-not-match filter. Blank lines are ignored.
func LoadSuppressions(path string, filters *fixtest.RegexFilters) error {
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %v", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		escaped := regexp.QuoteMeta(line)
		if err := filters.MustNotMatch.Set(escaped); err != nil {
			return fmt.Errorf("cannot parse suppression: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %v", err)
	}
	return nil
}

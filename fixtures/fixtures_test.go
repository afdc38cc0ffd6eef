package fixtures

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixturelab/fixture-harness/framework/fixtest"
)

func runSuite(t *testing.T, reg *fixtest.Registry, defs []fixtest.TestDefinition) fixtest.Results {
	t.Helper()
	plan, err := fixtest.Collect(reg, defs)
	require.NoError(t, err)
	results := plan.Run(fixtest.RunConfig{})
	for _, e := range results.TeardownErrors {
		t.Errorf("teardown error: %v", e)
	}
	return results
}

func TestTempDirFixture(t *testing.T) {
	reg := fixtest.NewRegistry()
	require.NoError(t, RegisterTempDir(reg))

	var dir string
	defs := []fixtest.TestDefinition{{
		Name:     "uses temp dir",
		Fixtures: []fixtest.FixtureKey{TempDirKey},
		Body: func(ft *fixtest.T) {
			dir = ft.Fixture(TempDirKey).(string)
			info, err := os.Stat(dir)
			require.NoError(ft, err)
			assert.True(ft, info.IsDir())

			path, err := WriteTempFile(dir, "data.txt", []byte("hello"))
			require.NoError(ft, err)
			assert.FileExists(ft, path)
		},
	}}
	require.True(t, runSuite(t, reg, defs).OK())
	assert.NoDirExists(t, dir, "directory is removed on teardown")
}

func TestTempDirFixtureIsFreshPerRequester(t *testing.T) {
	reg := fixtest.NewRegistry()
	require.NoError(t, RegisterTempDir(reg))

	other, err := fixtest.NewFixture("other_dir",
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			return deps.Get(TempDirKey), nil
		},
		fixtest.WithDeps(TempDirKey))
	require.NoError(t, err)
	require.NoError(t, reg.Register(other))

	defs := []fixtest.TestDefinition{{
		Name:     "two dirs",
		Fixtures: []fixtest.FixtureKey{TempDirKey, fixtest.Key("other_dir")},
		Body: func(ft *fixtest.T) {
			mine := ft.Fixture(TempDirKey).(string)
			theirs := ft.Fixture(fixtest.Key("other_dir")).(string)
			assert.NotEqual(ft, mine, theirs)
		},
	}}
	require.True(t, runSuite(t, reg, defs).OK())
}

func TestTempFileFixture(t *testing.T) {
	reg := fixtest.NewRegistry()
	require.NoError(t, RegisterTempFile(reg))

	var file string
	defs := []fixtest.TestDefinition{{
		Name:     "uses temp file",
		Fixtures: []fixtest.FixtureKey{TempFileKey},
		Body: func(ft *fixtest.T) {
			file = ft.Fixture(TempFileKey).(string)
			assert.FileExists(ft, file)
			require.NoError(ft, os.WriteFile(file, []byte("content"), 0600))
		},
	}}
	require.True(t, runSuite(t, reg, defs).OK())
	assert.NoFileExists(t, file)
}

func TestRegisterTempFileIsCompatibleWithTempDir(t *testing.T) {
	reg := fixtest.NewRegistry()
	require.NoError(t, RegisterTempDir(reg))
	require.NoError(t, RegisterTempFile(reg))
	assert.Len(t, reg.Keys(), 2)
}

func TestHTTPServerFixture(t *testing.T) {
	reg := fixtest.NewRegistry()
	require.NoError(t, RegisterHTTPServer(reg))

	var baseURL string
	defs := []fixtest.TestDefinition{{
		Name:     "serves requests",
		Fixtures: []fixtest.FixtureKey{HTTPServerKey},
		Body: func(ft *fixtest.T) {
			server := ft.Fixture(HTTPServerKey).(*HTTPServer)
			baseURL = server.BaseURL
			server.Router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}).Methods("GET")

			resp, err := http.Get(server.URLFor("/status"))
			require.NoError(ft, err)
			_ = resp.Body.Close()
			assert.Equal(ft, http.StatusNoContent, resp.StatusCode)

			resp, err = http.Get(server.URLFor("/missing"))
			require.NoError(ft, err)
			_ = resp.Body.Close()
			assert.Equal(ft, http.StatusNotFound, resp.StatusCode)
		},
	}}
	require.True(t, runSuite(t, reg, defs).OK())

	// The server is shut down by the case teardown.
	_, err := http.Get(baseURL + "/status")
	assert.Error(t, err)
}

func TestWriteTempFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteTempFile(dir, "x.txt", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "x.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

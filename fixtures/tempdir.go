package fixtures

import (
	"os"
	"path/filepath"

	"github.com/fixturelab/fixture-harness/framework/fixtest"
)

// TempDirKey identifies the temporary-directory fixture. Its value is a string
// path. The scope is fresh, so every requester gets its own directory, and the
// directory is removed when its owning scope ends.
var TempDirKey = fixtest.Key("temp_dir")

// TempFileKey identifies the temporary-file fixture. Its value is a string path
// inside the requester's temporary directory; the file exists and is empty.
var TempFileKey = fixtest.Key("temp_file")

func RegisterTempDir(reg *fixtest.Registry) error {
	if _, ok := reg.Lookup(TempDirKey); ok {
		return nil
	}
	spec, err := fixtest.NewFixture(TempDirKey.Name,
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			dir, err := os.MkdirTemp("", "fixture-harness-")
			if err != nil {
				return nil, err
			}
			deps.Logger().Printf("created temp dir %s", dir)
			return dir, nil
		},
		fixtest.WithTeardown(func(value interface{}) error {
			return os.RemoveAll(value.(string))
		}))
	if err != nil {
		return err
	}
	return reg.Register(spec)
}

func RegisterTempFile(reg *fixtest.Registry) error {
	if err := RegisterTempDir(reg); err != nil {
		return err
	}
	// No teardown of its own: the file lives inside the temp dir, whose teardown
	// removes the whole tree.
	spec, err := fixtest.NewFixture(TempFileKey.Name,
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			dir := deps.Get(TempDirKey).(string)
			f, err := os.CreateTemp(dir, "file-")
			if err != nil {
				return nil, err
			}
			path := f.Name()
			if err := f.Close(); err != nil {
				return nil, err
			}
			return path, nil
		},
		fixtest.WithDeps(TempDirKey))
	if err != nil {
		return err
	}
	return reg.Register(spec)
}

// WriteTempFile is a convenience for test bodies: write content to a fresh file
// under the given directory and return its path.
func WriteTempFile(dir, name string, content []byte) (string, error) {
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, content, 0600)
}

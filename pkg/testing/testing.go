// Package testing is imported for its side effect only:
//
//	import _ "liyu1981.xyz/ward-alert-service/pkg/testing"
//
// It moves the test binary to the module root so relative paths (logs/, the local
// fallback file) resolve the same way they do for cmd/server, and marks the process
// as a test environment.
package testing

import (
	"os"
	"path/filepath"
	"runtime"
)

func init() {
	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(filename), "..", "..")
	if err := os.Chdir(root); err != nil {
		panic(err)
	}

	if _, ok := os.LookupEnv("GO_ENV"); !ok {
		_ = os.Setenv("GO_ENV", "test")
	}
}

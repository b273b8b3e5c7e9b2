// Package snapshot_test provides golden snapshot tests across all
// flavors.
//
// For each script in testdata/in/, the test compiles against every
// flavor's catalog and compares the graph dump to golden files stored
// in testdata/golden/{geometry,shader,compositor}/.
//
// To regenerate golden files after intentional changes:
//
//	UPDATE_GOLDEN=1 go test ./snapshot/...
package snapshot_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/gonodes/exprgraph"
	"github.com/gonodes/exprgraph/catalog"
	"github.com/gonodes/exprgraph/expr"
	"github.com/gonodes/exprgraph/ir"
)

// scriptFile represents an input script loaded from disk.
type scriptFile struct {
	name   string
	source string
}

// snapshotEnv declares the inputs every snapshot script may use.
func snapshotEnv(t *testing.T) *expr.Environment {
	t.Helper()
	env := expr.NewEnvironment()
	for _, d := range []struct {
		name string
		typ  ir.DataType
	}{
		{"a", ir.TypeScalar},
		{"b", ir.TypeScalar},
		{"p", ir.TypeVector3},
		{"q", ir.TypeVector3},
		{"on", ir.TypeBoolean},
	} {
		if err := env.Declare(d.name, d.typ); err != nil {
			t.Fatal(err)
		}
	}
	return env
}

// TestSnapshots loads all scripts, compiles each against every flavor,
// and compares the dump with golden files. A script a flavor cannot
// compile (unsupported operator) records a golden error file instead.
func TestSnapshots(t *testing.T) {
	scripts := loadInputScripts(t, "testdata/in")
	if len(scripts) == 0 {
		t.Fatal("no input scripts found in testdata/in/")
	}

	for i := range scripts {
		script := &scripts[i]
		t.Run(script.name, func(t *testing.T) {
			for _, flavor := range catalog.Flavors() {
				t.Run(flavor.String(), func(t *testing.T) {
					out := compileDump(t, script.source, flavor)
					path := filepath.Join("testdata", "golden", flavor.String(), script.name+".txt")
					compareGolden(t, path, out)
				})
			}
		})
	}
}

func compileDump(t *testing.T, source string, flavor catalog.Flavor) string {
	t.Helper()
	res, err := exprgraph.Compile(source, exprgraph.Options{
		Flavor: flavor,
		Env:    snapshotEnv(t),
	})
	if err != nil {
		var se *expr.SourceError
		if errors.As(err, &se) {
			return fmt.Sprintf("error %s: %s\n", se.Code, se.Message)
		}
		t.Fatalf("compile failed: %v", err)
	}
	return res.Graph.Dump()
}

// loadInputScripts reads all .expr files from the given directory.
func loadInputScripts(t *testing.T, dir string) []scriptFile {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read input directory %q: %v", dir, err)
	}

	var scripts []scriptFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".expr") {
			continue
		}
		data, readErr := os.ReadFile(filepath.Join(dir, entry.Name()))
		if readErr != nil {
			t.Fatalf("read script %q: %v", entry.Name(), readErr)
		}
		name := strings.TrimSuffix(entry.Name(), ".expr")
		scripts = append(scripts, scriptFile{name: name, source: string(data)})
	}

	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].name < scripts[j].name
	})

	return scripts
}

// compareGolden compares actual output with the golden file at path.
// If UPDATE_GOLDEN is set, writes actual output as the new golden file.
func compareGolden(t *testing.T, path, actual string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDEN") != "" {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			t.Fatalf("create golden dir: %v", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(actual), 0o644); wErr != nil {
			t.Fatalf("write golden file: %v", wErr)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("golden file missing: %s\nRun with UPDATE_GOLDEN=1 to create.\n\nActual output:\n%s", path, actual)
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	expectedStr := strings.ReplaceAll(string(expected), "\r\n", "\n")
	actualStr := strings.ReplaceAll(actual, "\r\n", "\n")

	if expectedStr != actualStr {
		t.Errorf("output differs from golden %s:\nexpected:\n%s\nactual:\n%s", path, expectedStr, actualStr)
	}
}

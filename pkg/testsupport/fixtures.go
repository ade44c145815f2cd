package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// MustLoadSchema parses a schema fixture, failing the test on error.
func MustLoadSchema(t *testing.T, path string) *schema.Node {
	t.Helper()

	node, err := LoadSchema(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return node
}

// LoadSchema parses a schema fixture for callers without a *testing.T.
func LoadSchema(path string) (*schema.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read schema: %w", err)
	}
	node, err := schema.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse schema %s: %w", path, err)
	}
	return node, nil
}

// MustLoadStore reads a YAML fixture into a fresh document store.
func MustLoadStore(t *testing.T, path string) *document.Store {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	store := document.NewStore()
	if err := store.FromYAML(string(data)); err != nil {
		t.Fatalf("parse document %s: %v", path, err)
	}
	return store
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, append(payload, '\n'))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// AssertJSONGolden compares the JSON encoding of got with the golden file at
// path. Both sides are decoded before comparison so formatting and key order
// do not matter. With UPDATE_GOLDENS set the golden is rewritten instead.
func AssertJSONGolden(t *testing.T, path string, got any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") != "" {
		WriteGolden(t, path, got)
		return
	}

	payload, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var gotTree, wantTree any
	if err := json.Unmarshal(payload, &gotTree); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if err := json.Unmarshal(MustReadGolden(t, path), &wantTree); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	if diff := cmp.Diff(wantTree, gotTree); diff != "" {
		t.Fatalf("golden mismatch %s (-want +got):\n%s", path, diff)
	}
}

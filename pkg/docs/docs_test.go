package docs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestTitle(t *testing.T) {
	root := filepath.Join("repo", "src")
	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(root, "readme.md"), "Src Readme"},
		{filepath.Join(root, "README.md"), "Src Readme"},
		{filepath.Join(root, "nodes", "readme.md"), "Nodes Readme"},
		{filepath.Join(root, "nodes", "condition.md"), "Condition"},
		{filepath.Join(root, "api-calls.md"), "Api-calls"},
		{filepath.Join(root, "Already.md"), "Already"},
		{filepath.Join(root, "über.md"), "Über"},
	}
	for _, tt := range tests {
		if got := Title(root, tt.path); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	root := writeTree(t, map[string]string{
		"readme.md":          "root docs",
		"nodes/condition.md": "if/else",
		"nodes/readme.md":    "about nodes",
		"notes.txt":          "ignored",
	})

	var buf bytes.Buffer
	n, err := Build(&buf, root, Options{
		Now: func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n != 3 {
		t.Errorf("files = %d, want 3", n)
	}

	want := "# COREZOID DOCUMENTATION COLLECTION\n\n" +
		"Generated on: 2026-03-01T09:30:00.000Z\n" +
		"Total files: 3\n\n" +
		"---\n\n" +
		"\n\n## Condition\n\nif/else" +
		"\n\n## Nodes Readme\n\nabout nodes" +
		"\n\n## Src Readme\n\nroot docs"
	if got := buf.String(); got != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildErrors(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Build(&buf, filepath.Join(t.TempDir(), "missing"), Options{}); !errors.Is(err, errors.ErrCodeInputNotFound) {
		t.Errorf("missing dir error = %v", err)
	}

	file := filepath.Join(t.TempDir(), "f.md")
	os.WriteFile(file, nil, 0o644)
	if _, err := Build(&buf, file, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("file root error = %v", err)
	}
}

func TestWriteFileCreatesDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "A"})
	out := filepath.Join(t.TempDir(), "build", "nested", "docs.txt")

	n, err := WriteFile(root, out, Options{Title: "PROCESS DOCS"})
	if err != nil || n != 1 {
		t.Fatalf("WriteFile = %d, %v", n, err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("# PROCESS DOCS\n")) || !bytes.HasSuffix(data, []byte("## A\n\nA")) {
		t.Errorf("unexpected output:\n%s", data)
	}
}

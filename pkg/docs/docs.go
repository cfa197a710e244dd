// Package docs gathers markdown files into a single text document.
//
// The output starts with a header naming the collection, the generation
// time and the number of files, followed by one "## Title" section per file
// in lexical path order. A file called readme.md is titled after its
// directory ("Nodes Readme"), or "Src Readme" at the root.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// DefaultTitle heads the collection when Options.Title is empty.
const DefaultTitle = "COREZOID DOCUMENTATION COLLECTION"

// Options configures [Build].
type Options struct {
	Title string

	// Now stamps the header. Nil uses time.Now.
	Now func() time.Time

	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Collect returns every *.md file under root in lexical order.
func Collect(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputNotFound, err, "directory not found: %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// Title returns the section heading for the markdown file at path.
func Title(root, path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".md")
	if !strings.EqualFold(base, "readme") {
		return capitalize(base)
	}
	dir := filepath.Dir(path)
	if filepath.Clean(dir) == filepath.Clean(root) {
		return "Src Readme"
	}
	return capitalize(filepath.Base(dir)) + " Readme"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Build writes the collection of markdown files under root to w and returns
// the number of files included.
func Build(w io.Writer, root string, opts Options) (int, error) {
	opts.setDefaults()
	files, err := Collect(root)
	if err != nil {
		return 0, err
	}
	opts.Logger.Info("collecting documentation", "root", root, "files", len(files))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", opts.Title)
	fmt.Fprintf(&buf, "Generated on: %s\n", opts.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	fmt.Fprintf(&buf, "Total files: %d\n\n", len(files))
	buf.WriteString("---\n\n")

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", path, err)
		}
		opts.Logger.Debug("adding", "path", path)
		fmt.Fprintf(&buf, "\n\n## %s\n\n", Title(root, path))
		buf.Write(content)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(files), nil
}

// WriteFile builds the collection into the file out, creating its directory
// when missing.
func WriteFile(root, out string, opts Options) (int, error) {
	var buf bytes.Buffer
	n, err := Build(&buf, root, opts)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", out, err)
	}
	return n, nil
}

package scheme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// DefaultSuffix is inserted before the input's extension to name the output.
const DefaultSuffix = ".repositioned"

// Document is a decoded process schema.
//
// Nodes lists the entries of scheme.nodes in document order. The Document is
// not safe for concurrent mutation.
type Document struct {
	Nodes []*Node

	root map[string]any
}

// NewDocument builds a document holding the given nodes under scheme.nodes.
func NewDocument(nodes ...*Node) *Document {
	raw := make([]any, 0, len(nodes))
	for _, n := range nodes {
		raw = append(raw, n.raw)
	}
	return &Document{
		Nodes: nodes,
		root:  map[string]any{"scheme": map[string]any{"nodes": raw}},
	}
}

// Parse decodes and shape-checks a process document.
// It returns a MALFORMED_SCHEMA error for invalid JSON, a missing or
// non-array scheme.nodes, or a node without a usable id.
func Parse(data []byte) (*Document, error) {
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedSchema, err, "decode document")
	}
	if err := validateShape(v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedSchema, err, "invalid process schema format: missing nodes array")
	}

	root := v.(map[string]any)
	items := root["scheme"].(map[string]any)["nodes"].([]any)

	doc := &Document{root: root, Nodes: make([]*Node, 0, len(items))}
	for i, item := range items {
		n, ok := newNode(item.(map[string]any))
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedSchema, "node %d has no usable id", i)
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	return doc, nil
}

// Decode reads a process document from r. See [Parse].
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Parse(data)
}

// ReadFile reads a process document from path.
// An unreadable path yields INPUT_NOT_FOUND.
func ReadFile(path string) (*Document, error) {
	data, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// ReadSource returns the raw bytes at path, failing with INPUT_NOT_FOUND.
func ReadSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputNotFound, err, "file not found: %s", path)
	}
	return data, nil
}

// StartNodes returns every start node in document order.
func (d *Document) StartNodes() []*Node {
	var starts []*Node
	for _, n := range d.Nodes {
		if n.Kind == KindStart {
			starts = append(starts, n)
		}
	}
	return starts
}

// EdgeCount returns the number of routing edges, dangling ones included.
func (d *Document) EdgeCount() int {
	count := 0
	for _, n := range d.Nodes {
		count += len(n.Targets)
	}
	return count
}

// Encode writes the document as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d.root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the document to path, replacing it atomically.
func WriteFile(d *Document, path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	return WriteBytes(path, data)
}

// WriteBytes writes already encoded document bytes to path atomically: a
// reader sees either the old file or the complete new one. Missing parent
// directories are created.
func WriteBytes(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".flowlayout-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp in %s: %w", dir, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// OutputPath names the sibling output file for input by inserting suffix
// before the extension: "p.json" becomes "p.repositioned.json".
// An empty suffix means [DefaultSuffix].
func OutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ext
}

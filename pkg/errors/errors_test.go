package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNoStartNode, "no start node in %s", "p.json")

	if err.Code != ErrCodeNoStartNode {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNoStartNode)
	}

	if err.Message != "no start node in p.json" {
		t.Errorf("Message = %v, want %v", err.Message, "no start node in p.json")
	}

	expected := "NO_START_NODE: no start node in p.json"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInputNotFound, cause, "open input")

	if err.Code != ErrCodeInputNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInputNotFound)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "INPUT_NOT_FOUND: open input: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeMalformedSchema, "test"),
			code:     ErrCodeMalformedSchema,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeMalformedSchema, "test"),
			code:     ErrCodeNoStartNode,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInputNotFound, New(ErrCodeInternal, "inner"), "outer"),
			code:     ErrCodeInputNotFound,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmtWrap(New(ErrCodeNoStartNode, "inner")),
			code:     ErrCodeNoStartNode,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidConfig, "test"), ErrCodeInvalidConfig},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeMalformedSchema, "missing scheme.nodes"), "missing scheme.nodes"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFatal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeInputNotFound, "x"), true},
		{New(ErrCodeMalformedSchema, "x"), true},
		{New(ErrCodeNoStartNode, "x"), true},
		{New(ErrCodeInvalidConfig, "x"), false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := Fatal(tt.err); got != tt.want {
			t.Errorf("Fatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{Code: ErrCodeDanglingEdge, NodeID: "a", Target: "zz", Message: "edge a -> zz targets unknown node"}
	want := "DANGLING_EDGE_REFERENCE: edge a -> zz targets unknown node"
	if got := w.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func fmtWrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "outer: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

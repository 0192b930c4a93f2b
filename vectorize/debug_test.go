package vectorize

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLogWriters(t *testing.T) {
	var ops, diag bytes.Buffer
	SetLogWriters(&ops, &diag, nil)
	defer SetLogWriters(nil, nil, nil)

	if _, err := NewLocsAndConfs(1, 7); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(diag.String(), "[vectorize]") || !strings.Contains(diag.String(), "length=102") {
		t.Errorf("expected construction summary in diag stream, got %q", diag.String())
	}

	v := NewLocsAndConfsDefault()
	_, _ = v.Vectorize(&FrameData{Size: Size{Width: 1, Height: 1}, Poses: &Poses{Scores: []float64{1}}})
	if !strings.Contains(ops.String(), "malformed frame data") {
		t.Errorf("expected rejected frame in ops stream, got %q", ops.String())
	}
}

func TestLogWithoutWriters(t *testing.T) {
	SetLogWriters(nil, nil, nil)

	// Should not panic when no logger is configured.
	opsf("discarded %d", 1)
	diagf("discarded %d", 2)
	tracef("discarded %d", 3)
}

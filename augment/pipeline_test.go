package augment

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow(t *testing.T, size, length int) *Window {
	t.Helper()
	frames := make([][]float32, size)
	for i := range frames {
		frames[i] = make([]float32, length)
		for j := range frames[i] {
			frames[i][j] = float32((i+j)%5) * 0.2
		}
	}
	w, err := NewWindow(frames)
	require.NoError(t, err)
	return w
}

func trainPipeline(t *testing.T, windowSize int, src rand.Source) *Pipeline {
	t.Helper()
	layout, err := LayoutFor(FeatVersion2, 7)
	require.NoError(t, err)
	return NewPipeline(windowSize, src,
		NewMoveCenterPts(0.05, 0.05, 1280, 720, layout),
		NewActivationDelta(0.1, layout),
		NewNormalizePixelPts(1280, 720, layout),
	)
}

func TestNewWindow(t *testing.T) {
	w, err := NewWindow([][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, w.ID)
	assert.Equal(t, 2, w.Size())
	assert.Equal(t, 2, w.VectorLength())

	_, err = NewWindow([][]float32{{1, 2}, {3}})
	assert.True(t, errors.Is(err, ErrVectorLengthMismatch))

	empty, err := NewWindow(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.VectorLength())
}

func TestPipelineReturnsSameWindow(t *testing.T) {
	p := trainPipeline(t, 4, rand.NewPCG(1, 2))
	w := testWindow(t, 4, 40)
	got, err := p.Apply(w)
	require.NoError(t, err)
	assert.Same(t, w, got)
}

func TestPipelineWindowSizeMismatch(t *testing.T) {
	p := trainPipeline(t, 25, rand.NewPCG(1, 2))
	w := testWindow(t, 24, 40)
	_, err := p.Apply(w)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWindowSizeMismatch))
	assert.Contains(t, err.Error(), w.ID.String())
}

func TestPipelineErrorContext(t *testing.T) {
	p := trainPipeline(t, 0, rand.NewPCG(1, 2))
	w := testWindow(t, 3, 8)
	_, err := p.Apply(w)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVectorLengthMismatch))
	assert.Contains(t, err.Error(), "MoveCenterPts(")
	assert.Contains(t, err.Error(), w.ID.String())
}

func TestPipelineDeterministic(t *testing.T) {
	a := testWindow(t, 5, 40)
	b := a.Clone()
	_, err := trainPipeline(t, 5, rand.NewPCG(42, 43)).Apply(a)
	require.NoError(t, err)
	_, err = trainPipeline(t, 5, rand.NewPCG(42, 43)).Apply(b)
	require.NoError(t, err)
	assert.Equal(t, a.Frames, b.Frames)
}

func TestPipelineApplyAll(t *testing.T) {
	build := func() []*Window {
		windows := make([]*Window, 8)
		for i := range windows {
			windows[i] = testWindow(t, 5, 40)
		}
		return windows
	}
	first, second := build(), build()
	require.NoError(t, trainPipeline(t, 5, rand.NewPCG(9, 9)).ApplyAll(first))
	require.NoError(t, trainPipeline(t, 5, rand.NewPCG(9, 9)).ApplyAll(second))
	for i := range first {
		assert.Equal(t, first[i].Frames, second[i].Frames, "window %d", i)
	}
	assert.NotEqual(t, first[0].Frames, first[1].Frames, "windows get distinct sources")
}

func TestPipelineNilLayout(t *testing.T) {
	p := NewPipeline(2, rand.NewPCG(1, 1), NewActivationDelta(0.1, nil))
	_, err := p.Apply(testWindow(t, 2, 40))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNilLayout))
	assert.Contains(t, err.Error(), "ActivationDelta(conf_delta=0.1, feat_version=0)")
}

func TestPipelineApplyAllError(t *testing.T) {
	windows := []*Window{testWindow(t, 5, 40), testWindow(t, 4, 40)}
	err := trainPipeline(t, 5, rand.NewPCG(1, 1)).ApplyAll(windows)
	assert.True(t, errors.Is(err, ErrWindowSizeMismatch))
}

func TestPipelineString(t *testing.T) {
	p := trainPipeline(t, 5, nil)
	s := p.String()
	assert.True(t, strings.HasPrefix(s, "Compose([MoveCenterPts("))
	assert.Contains(t, s, "NormalizePixelPts(im_w=1280, im_h=720, feat_version=2)")
	assert.Len(t, p.Transforms(), 3)
}

func TestPipelineLogging(t *testing.T) {
	var ops, trace bytes.Buffer
	SetLogWriters(&ops, nil, &trace)
	defer SetLogWriters(nil, nil, nil)

	p := trainPipeline(t, 5, rand.NewPCG(1, 1))
	_, err := p.Apply(testWindow(t, 5, 40))
	require.NoError(t, err)
	assert.Contains(t, trace.String(), "[augment]")
	assert.Contains(t, trace.String(), "5 frames x 40 values")

	_, err = p.Apply(testWindow(t, 2, 40))
	require.Error(t, err)
	assert.Contains(t, ops.String(), "window size mismatch")
}

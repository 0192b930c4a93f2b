package augment

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Pipeline applies transforms in order to windows of a fixed size.
// Apply draws from one shared source and is not safe for concurrent use; ApplyAll is.
type Pipeline struct {
	transforms []Transform
	// Expected frames per window. Zero accepts any size
	windowSize int
	src        rand.Source
}

// NewPipeline creates new instance of Pipeline.
// src feeds every randomized transform and must be non-nil if any is present.
func NewPipeline(windowSize int, src rand.Source, transforms ...Transform) *Pipeline {
	p := &Pipeline{
		transforms: transforms,
		windowSize: windowSize,
		src:        src,
	}
	diagf("NewPipeline: %s", p)
	return p
}

// Transforms returns the transforms in application order
func (p *Pipeline) Transforms() []Transform {
	return p.transforms
}

func (p *Pipeline) String() string {
	names := make([]string, len(p.transforms))
	for i, t := range p.transforms {
		names[i] = t.String()
	}
	return "Compose([" + strings.Join(names, ", ") + "])"
}

// Apply runs every transform on the window in place using the pipeline's source.
// The source is not guarded, so concurrent calls race on its state.
// Use ApplyAll to augment several windows in parallel.
func (p *Pipeline) Apply(w *Window) (*Window, error) {
	return p.apply(w, p.src)
}

func (p *Pipeline) apply(w *Window, src rand.Source) (*Window, error) {
	if w == nil {
		return nil, errors.New("nil window")
	}
	if p.windowSize > 0 && w.Size() != p.windowSize {
		err := errors.Wrapf(ErrWindowSizeMismatch, "window %s: expected %d frames, got %d", w.ID, p.windowSize, w.Size())
		opsf("Apply: %v", err)
		return nil, err
	}
	for _, t := range p.transforms {
		if _, err := t.Apply(w, src); err != nil {
			err = errors.Wrapf(err, "window %s: %s", w.ID, t)
			opsf("Apply: %v", err)
			return nil, err
		}
	}
	tracef("Apply: window %s, %d frames x %d values", w.ID, w.Size(), w.VectorLength())
	return w, nil
}

// ApplyAll transforms independent windows concurrently.
// Each window gets its own source seeded from the pipeline's source in slice order,
// so results do not depend on scheduling. The first error is returned.
func (p *Pipeline) ApplyAll(windows []*Window) error {
	sources := make([]rand.Source, len(windows))
	if p.src != nil {
		seeder := rand.New(p.src)
		for i := range sources {
			sources[i] = rand.NewPCG(seeder.Uint64(), seeder.Uint64())
		}
	}

	errCh := make(chan error, len(windows))
	var wg sync.WaitGroup
	for i := range windows {
		wg.Add(1)
		go func(w *Window, src rand.Source) {
			defer wg.Done()
			if _, err := p.apply(w, src); err != nil {
				errCh <- err
			}
		}(windows[i], sources[i])
	}
	wg.Wait()
	close(errCh)

	if len(errCh) > 0 {
		return <-errCh
	}
	return nil
}

package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"edgevision/internal/codec"
	"edgevision/internal/pipeline"
	"edgevision/internal/processing"
)

var ErrNoImage = errors.New("no image loaded")

// Session is the viewer state behind the window: the loaded source, the
// current settings and the last result.
type Session struct {
	pipeline *pipeline.Pipeline

	mu        sync.Mutex
	source    []byte
	info      codec.Info
	result    []byte
	algorithm processing.Algorithm
	params    processing.Parameters
	runID     uint64
}

func NewSession(p *pipeline.Pipeline) *Session {
	return &Session{
		pipeline:  p,
		algorithm: processing.Canny,
		params:    processing.DefaultParameters(),
	}
}

// Load replaces the source image and returns a preview of it.
func (s *Session) Load(data []byte) (image.Image, codec.Info, error) {
	info, err := codec.Inspect(data, s.pipeline.Memory())
	if err != nil {
		return nil, codec.Info{}, err
	}
	preview, err := codec.Preview(data)
	if err != nil {
		return nil, codec.Info{}, err
	}

	s.mu.Lock()
	s.source = data
	s.info = info
	s.result = nil
	s.mu.Unlock()

	return preview, info, nil
}

func (s *Session) SetAlgorithm(alg processing.Algorithm) {
	s.mu.Lock()
	s.algorithm = alg
	s.mu.Unlock()
}

func (s *Session) SetParameters(params processing.Parameters) {
	s.mu.Lock()
	s.params = params
	s.mu.Unlock()
}

func (s *Session) Settings() (processing.Algorithm, processing.Parameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.algorithm, s.params
}

func (s *Session) HasImage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source != nil
}

// Result returns the PNG bytes of the last successful run.
func (s *Session) Result() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Process runs the pipeline with the current settings. A run overtaken by a
// newer one returns context.Canceled and does not replace the result.
func (s *Session) Process(ctx context.Context) (image.Image, time.Duration, error) {
	s.mu.Lock()
	if s.source == nil {
		s.mu.Unlock()
		return nil, 0, ErrNoImage
	}
	s.runID++
	id := s.runID
	source, alg, params := s.source, s.algorithm, s.params
	s.mu.Unlock()

	start := time.Now()
	out, err := s.pipeline.Run(ctx, source, alg, params)
	took := time.Since(start)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, took, ctxErr
	}
	if err != nil {
		return nil, took, err
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, took, fmt.Errorf("%w: %v", codec.ErrDecode, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.runID {
		return nil, took, context.Canceled
	}
	s.result = out
	return img, took, nil
}

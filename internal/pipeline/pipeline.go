package pipeline

import (
	"context"
	"fmt"
	"time"

	"edgevision/internal/codec"
	"edgevision/internal/debug/timing"
	"edgevision/internal/logger"
	"edgevision/internal/opencv/memory"
	"edgevision/internal/processing"
	"edgevision/internal/processing/chain"
	"edgevision/internal/processing/edges"
	"edgevision/internal/processing/filters"
	"edgevision/internal/processing/histogram"
)

const component = "Pipeline"

// Pipeline decodes, filters and re-encodes images. It holds no per-call
// state, so one instance can serve concurrent callers.
type Pipeline struct {
	registry *edges.Registry
	logger   logger.Logger
	timing   *timing.Tracker
	memory   *memory.Tracker
}

type Option func(*Pipeline)

func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func WithTiming(t *timing.Tracker) Option {
	return func(p *Pipeline) { p.timing = t }
}

func WithMemoryTracker(m *memory.Tracker) Option {
	return func(p *Pipeline) { p.memory = m }
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: edges.NewRegistry(),
		logger:   logger.Nop(),
		timing:   timing.NewTracker(),
		memory:   memory.NewTracker(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Timing() *timing.Tracker {
	return p.timing
}

func (p *Pipeline) Memory() *memory.Tracker {
	return p.memory
}

// Process is the loosely typed entry point used by transports. Unknown
// algorithm names fall back to the grayscale passthrough.
func (p *Pipeline) Process(ctx context.Context, data []byte, algorithm string, params map[string]interface{}) ([]byte, error) {
	alg, known := processing.LookupAlgorithm(algorithm)
	if !known {
		p.logger.Debug(component, "unknown algorithm, using identity", map[string]interface{}{
			"algorithm": algorithm,
		})
	}
	return p.Run(ctx, data, alg, processing.ParseParameters(params))
}

// Run decodes data, applies grayscale, optional blur, the detector for alg and
// optional inversion, and returns the PNG encoding of the result.
func (p *Pipeline) Run(ctx context.Context, data []byte, alg processing.Algorithm, params processing.Parameters) (out []byte, err error) {
	start := time.Now()
	params = params.Normalize()

	steps := p.newChain(alg)
	fields := map[string]interface{}{
		"algorithm":  alg.String(),
		"input_size": len(data),
		"steps":      steps.ActiveStepNames(params),
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(component, fmt.Errorf("panic during processing: %v", r), fields)
			out, err = nil, ErrProcessingFailed
		}
	}()

	out, cause := p.run(ctx, data, steps, params)
	if cause != nil {
		p.logger.Error(component, cause, fields)
		return nil, ErrProcessingFailed
	}

	fields["output_size"] = len(out)
	fields["duration_ms"] = time.Since(start).Milliseconds()
	p.logger.Debug(component, "processing completed", fields)
	return out, nil
}

func (p *Pipeline) newChain(alg processing.Algorithm) *chain.ProcessingChain {
	return chain.NewProcessingChain([]filters.Step{
		filters.NewGrayscaleConverter(),
		filters.NewGaussianFilter(),
		edges.NewDetectStep(p.registry, alg),
		filters.NewInvertFilter(),
	}).WithTiming(p.timing)
}

func (p *Pipeline) run(ctx context.Context, data []byte, steps *chain.ProcessingChain, params processing.Parameters) ([]byte, error) {
	if err := p.memory.CheckLimit(); err != nil {
		return nil, err
	}

	decodeCtx := p.timing.StartTiming("decode")
	src, err := codec.Decode(data, p.memory)
	p.timing.EndTiming(decodeCtx)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	result, err := steps.Execute(ctx, src, params)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	encodeCtx := p.timing.StartTiming("encode")
	encoded, err := codec.Encode(result)
	p.timing.EndTiming(encodeCtx)
	if err != nil {
		return nil, err
	}
	return encoded, nil
}

// Histogram decodes data directly to grayscale and returns 256 counts in
// intensity order.
func (p *Pipeline) Histogram(data []byte) (counts []int, err error) {
	fields := map[string]interface{}{"input_size": len(data)}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(component, fmt.Errorf("panic during histogram: %v", r), fields)
			counts, err = nil, ErrHistogramFailed
		}
	}()

	timingCtx := p.timing.StartTiming("histogram")
	defer p.timing.EndTiming(timingCtx)

	gray, err := codec.DecodeGrayscale(data, p.memory)
	if err != nil {
		p.logger.Error(component, err, fields)
		return nil, ErrHistogramFailed
	}
	defer gray.Close()

	h, err := histogram.Compute(gray)
	if err != nil {
		p.logger.Error(component, err, fields)
		return nil, ErrHistogramFailed
	}
	return h.Slice(), nil
}

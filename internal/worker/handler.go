package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	OpProcess   = "process"
	OpHistogram = "histogram"
)

var ErrUnknownOp = errors.New("unknown op")

// Processor is the core a worker drives.
type Processor interface {
	Process(ctx context.Context, data []byte, algorithm string, params map[string]interface{}) ([]byte, error)
	Histogram(data []byte) ([]int, error)
}

// Request is the JSON body of an RPC message. Image travels as base64.
type Request struct {
	Op        string                 `json:"op"`
	Image     []byte                 `json:"image"`
	Algorithm string                 `json:"algorithm,omitempty"`
	Params    map[string]interface{} `json:"params,omitempty"`
}

// Response carries exactly one of Image, Histogram or Error.
type Response struct {
	Image     []byte `json:"image,omitempty"`
	Histogram []int  `json:"histogram,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Handler struct {
	processor Processor
}

func NewHandler(processor Processor) *Handler {
	return &Handler{processor: processor}
}

// Handle maps a request body to a reply body. It never fails; errors are
// reported inside the reply.
func (h *Handler) Handle(ctx context.Context, body []byte) []byte {
	resp := h.handle(ctx, body)
	out, err := json.Marshal(resp)
	if err != nil {
		out, _ = json.Marshal(Response{Error: err.Error()})
	}
	return out
}

func (h *Handler) handle(ctx context.Context, body []byte) Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Response{Error: fmt.Sprintf("invalid request: %v", err)}
	}

	switch req.Op {
	case OpProcess:
		if req.Params == nil {
			req.Params = map[string]interface{}{}
		}
		out, err := h.processor.Process(ctx, req.Image, req.Algorithm, req.Params)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{Image: out}

	case OpHistogram:
		counts, err := h.processor.Histogram(req.Image)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{Histogram: counts}

	default:
		return Response{Error: fmt.Sprintf("%v: %q", ErrUnknownOp, req.Op)}
	}
}

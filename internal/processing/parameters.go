package processing

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultBlurKernel = 5
	DefaultThreshold1 = 100
	DefaultThreshold2 = 200
	DefaultKSize      = 3

	// MaxKernelSize bounds blur and structuring-element sizes.
	MaxKernelSize = 255
)

// Parameters is the typed form of the request parameter map.
type Parameters struct {
	Blur       bool `json:"blur"`
	BlurKernel int  `json:"blur_kernel"`
	Threshold1 int  `json:"threshold1"`
	Threshold2 int  `json:"threshold2"`
	KSize      int  `json:"ksize"`
	Invert     bool `json:"invert"`
}

func DefaultParameters() Parameters {
	return Parameters{
		BlurKernel: DefaultBlurKernel,
		Threshold1: DefaultThreshold1,
		Threshold2: DefaultThreshold2,
		KSize:      DefaultKSize,
	}
}

// CoerceOdd bumps even sizes to the next odd value.
func CoerceOdd(k int) int {
	if k%2 == 0 {
		return k + 1
	}
	return k
}

// ParseParameters converts a decoded JSON object into Parameters. Missing or
// malformed values keep their defaults and unknown keys are ignored. Kernel
// sizes come back odd and positive.
func ParseParameters(raw map[string]interface{}) Parameters {
	p := DefaultParameters()

	if v, ok := boolParam(raw, "blur"); ok {
		p.Blur = v
	}
	if v, ok := intParam(raw, "blur_kernel"); ok {
		p.BlurKernel = v
	}
	if v, ok := intParam(raw, "threshold1"); ok {
		p.Threshold1 = v
	}
	if v, ok := intParam(raw, "threshold2"); ok {
		p.Threshold2 = v
	}
	if v, ok := intParam(raw, "ksize"); ok {
		p.KSize = v
	}
	if v, ok := boolParam(raw, "invert"); ok {
		p.Invert = v
	}

	return p.Normalize()
}

// Normalize replaces non-positive kernel sizes with defaults and makes them odd.
func (p Parameters) Normalize() Parameters {
	if p.BlurKernel <= 0 {
		p.BlurKernel = DefaultBlurKernel
	}
	if p.KSize <= 0 {
		p.KSize = DefaultKSize
	}
	p.BlurKernel = CoerceOdd(p.BlurKernel)
	p.KSize = CoerceOdd(p.KSize)
	return p
}

func intParam(raw map[string]interface{}, key string) (int, bool) {
	v, exists := raw[key]
	if !exists || v == nil {
		return 0, false
	}

	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

// floatToInt truncates f, treating NaN and values outside the int32 range as
// malformed.
func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func boolParam(raw map[string]interface{}, key string) (bool, bool) {
	v, exists := raw[key]
	if !exists || v == nil {
		return false, false
	}

	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		return b != 0, true
	case int:
		return b != 0, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed, true
		}
	}
	return false, false
}

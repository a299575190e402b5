package processing

import "strings"

// Algorithm is the closed set of detectors. The zero value is Identity.
type Algorithm int

const (
	Identity Algorithm = iota
	Canny
	Sobel
	Laplacian
	Scharr
	Prewitt
	Morphological
	Roberts
)

var algorithmNames = [...]string{
	Identity:      "identity",
	Canny:         "canny",
	Sobel:         "sobel",
	Laplacian:     "laplacian",
	Scharr:        "scharr",
	Prewitt:       "prewitt",
	Morphological: "morphological",
	Roberts:       "roberts",
}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return algorithmNames[Identity]
	}
	return algorithmNames[a]
}

// ParseAlgorithm matches name case-insensitively. Unknown names map to Identity.
func ParseAlgorithm(name string) Algorithm {
	alg, _ := LookupAlgorithm(name)
	return alg
}

// LookupAlgorithm is ParseAlgorithm with a flag reporting whether name was recognized.
func LookupAlgorithm(name string) (Algorithm, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range algorithmNames {
		if n == name {
			return Algorithm(i), true
		}
	}
	return Identity, false
}

// Algorithms lists every variant in declaration order.
func Algorithms() []Algorithm {
	all := make([]Algorithm, len(algorithmNames))
	for i := range algorithmNames {
		all[i] = Algorithm(i)
	}
	return all
}

// UsesKernelSize reports whether the ksize parameter affects the algorithm.
func (a Algorithm) UsesKernelSize() bool {
	switch a {
	case Sobel, Laplacian, Morphological:
		return true
	default:
		return false
	}
}

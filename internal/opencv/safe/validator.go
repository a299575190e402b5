package safe

import (
	"fmt"
)

const maxDimension = 32768

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	return ValidateDimensions(mat.Cols(), mat.Rows(), operation)
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > maxDimension || height > maxDimension {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}

func ValidateChannels(mat *Mat, channels int, operation string) error {
	if mat.Channels() != channels {
		return fmt.Errorf("operation %s requires %d channel(s), got %d", operation, channels, mat.Channels())
	}
	return nil
}

// ValidateKernelSize checks an odd aperture against an inclusive upper bound.
func ValidateKernelSize(ksize, maxSize int, operation string) error {
	if ksize <= 0 || ksize%2 == 0 {
		return fmt.Errorf("kernel size %d must be positive and odd for operation: %s", ksize, operation)
	}
	if maxSize > 0 && ksize > maxSize {
		return fmt.Errorf("kernel size %d exceeds %d for operation: %s", ksize, maxSize, operation)
	}
	return nil
}

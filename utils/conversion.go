package utils

import (
	"fmt"
	"math"
)

// SafeInt64ToUint32 safely converts int64 to uint32, returning an error if the value does not fit
func SafeInt64ToUint32(value int64) (uint32, error) {
	if value < 0 || value > math.MaxUint32 {
		return 0, fmt.Errorf("int64 value %d out of uint32 range", value)
	}

	return uint32(value), nil //nolint:gosec // Conversion is safe after range check
}

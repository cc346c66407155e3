package bandmap

import (
	"errors"
	"fmt"
)

// ErrInvalidSample is matched by every sample validation failure
var ErrInvalidSample = errors.New("invalid sample")

// Reasons reported by InvalidSampleError
const (
	ReasonMissing   = "missing"
	ReasonNotFinite = "not finite"
	ReasonNotNumber = "not a number"
)

// InvalidSampleError reports which band made a sample unusable
type InvalidSampleError struct {
	Band   Band
	Value  float64
	Reason string
}

func (e *InvalidSampleError) Error() string {
	switch e.Reason {
	case ReasonMissing, ReasonNotNumber:
		return fmt.Sprintf("invalid sample: band %s is %s", e.Band, e.Reason)
	}
	return fmt.Sprintf("invalid sample: band %s is %s (%v)", e.Band, e.Reason, e.Value)
}

// Is lets errors.Is(err, ErrInvalidSample) match
func (e *InvalidSampleError) Is(target error) bool {
	return target == ErrInvalidSample
}

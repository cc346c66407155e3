package bandmap

import (
	"encoding/json"
	"math"
)

// Transform computes the RGB and false-color products for one pixel.
// A sample with a NaN or infinite band yields an *InvalidSampleError and no result.
func Transform(s Sample) (PixelResult, error) {
	if err := s.Validate(); err != nil {
		return PixelResult{}, err
	}

	return PixelResult{
		RGB:        [3]float64{ScaleFactor * s.B04, ScaleFactor * s.B03, ScaleFactor * s.B02},
		FalseColor: [3]float64{ScaleFactor * s.B08, ScaleFactor * s.B04, ScaleFactor * s.B03},
	}, nil
}

// Value returns the reflectance recorded for band b
func (s Sample) Value(b Band) (float64, bool) {
	switch b {
	case B02:
		return s.B02, true
	case B03:
		return s.B03, true
	case B04:
		return s.B04, true
	case B08:
		return s.B08, true
	}
	return 0, false
}

// Validate rejects samples holding NaN or infinite values
func (s Sample) Validate() error {
	for _, b := range inputBands {
		v, _ := s.Value(b)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidSampleError{Band: b, Value: v, Reason: ReasonNotFinite}
		}
	}
	return nil
}

// SampleFromMap builds a Sample from band-keyed values. Every input band must be present.
func SampleFromMap(values map[Band]float64) (Sample, error) {
	var s Sample
	for _, b := range inputBands {
		v, ok := values[b]
		if !ok {
			return Sample{}, &InvalidSampleError{Band: b, Reason: ReasonMissing}
		}
		switch b {
		case B02:
			s.B02 = v
		case B03:
			s.B03 = v
		case B04:
			s.B04 = v
		case B08:
			s.B08 = v
		}
	}
	return s, s.Validate()
}

// UnmarshalJSON requires every band key to be present and numeric.
// A null band counts as missing.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var raw map[Band]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	values := make(map[Band]float64, len(inputBands))
	for _, b := range inputBands {
		msg, ok := raw[b]
		if !ok || string(msg) == "null" {
			continue
		}
		var v float64
		if err := json.Unmarshal(msg, &v); err != nil {
			return &InvalidSampleError{Band: b, Reason: ReasonNotNumber}
		}
		values[b] = v
	}

	decoded, err := SampleFromMap(values)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Product returns the channels of the named output product
func (r PixelResult) Product(id string) ([3]float64, bool) {
	switch id {
	case ProductRGB:
		return r.RGB, true
	case ProductFalseColor:
		return r.FalseColor, true
	}
	return [3]float64{}, false
}

package bandmap

import (
	"fmt"
)

// inputBands is the order bands are requested from the host
var inputBands = []Band{B02, B03, B04, B08}

var products = []Product{
	{ID: ProductRGB, Channels: [3]Band{B04, B03, B02}},
	{ID: ProductFalseColor, Channels: [3]Band{B08, B04, B03}},
}

// Describe returns the setup descriptor. Each call returns a fresh copy.
func Describe() Setup {
	bands := make([]Band, len(inputBands))
	copy(bands, inputBands)

	outputs := make([]OutputSpec, 0, len(products))
	for _, p := range products {
		outputs = append(outputs, OutputSpec{ID: p.ID, Bands: len(p.Channels)})
	}

	return Setup{
		Input: []InputSpec{
			{Bands: bands, Units: UnitsReflectance},
		},
		Output: outputs,
	}
}

// Products returns the channel layout of every output product, in output order
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// HasBand reports whether any input spec requests band b
func (s Setup) HasBand(b Band) bool {
	for _, in := range s.Input {
		for _, have := range in.Bands {
			if have == b {
				return true
			}
		}
	}
	return false
}

// OutputByID looks up an output spec by id
func (s Setup) OutputByID(id string) (OutputSpec, bool) {
	for _, o := range s.Output {
		if o.ID == id {
			return o, true
		}
	}
	return OutputSpec{}, false
}

// Validate checks that the descriptor covers every band the products read
// and declares every product with a matching channel count.
func (s Setup) Validate() error {
	if len(s.Input) == 0 {
		return fmt.Errorf("setup declares no input")
	}
	for i, in := range s.Input {
		if len(in.Bands) == 0 {
			return fmt.Errorf("input[%d] declares no bands", i)
		}
		if in.Units == "" {
			return fmt.Errorf("input[%d] has no units", i)
		}
	}

	for _, p := range products {
		for _, b := range p.Channels {
			if !s.HasBand(b) {
				return fmt.Errorf("product %s reads band %s which is not in input", p.ID, b)
			}
		}

		o, ok := s.OutputByID(p.ID)
		if !ok {
			return fmt.Errorf("product %s is not declared in output", p.ID)
		}
		if o.Bands != len(p.Channels) {
			return fmt.Errorf("output %s declares %d bands, product has %d", p.ID, o.Bands, len(p.Channels))
		}
	}

	return nil
}

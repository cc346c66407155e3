// Package bandmap maps Sentinel-2 reflectance samples into RGB and
// false-color pixel products.
package bandmap

// Band identifies a Sentinel-2 spectral band
type Band string

// Bands read by the mapper
const (
	B02 Band = "B02" // blue
	B03 Band = "B03" // green
	B04 Band = "B04" // red
	B08 Band = "B08" // near-infrared
)

// Units is the measurement unit requested for the input bands
type Units string

const (
	UnitsReflectance Units = "reflectance"
)

// Output product identifiers
const (
	ProductRGB        = "rgb"
	ProductFalseColor = "falseColor"
)

// ScaleFactor brightens reflectance for display. Results are not clamped.
const ScaleFactor = 2.5

// InputSpec declares a set of bands and the unit they are delivered in
type InputSpec struct {
	Bands []Band `json:"bands" yaml:"bands"`
	Units Units  `json:"units" yaml:"units"`
}

// OutputSpec declares one output product and its channel count
type OutputSpec struct {
	ID    string `json:"id" yaml:"id"`
	Bands int    `json:"bands" yaml:"bands"`
}

// Setup is the descriptor handed to the processing host once per session
type Setup struct {
	Input  []InputSpec  `json:"input" yaml:"input"`
	Output []OutputSpec `json:"output" yaml:"output"`
}

// Sample holds one pixel's reflectance values
type Sample struct {
	B02 float64 `json:"B02"`
	B03 float64 `json:"B03"`
	B04 float64 `json:"B04"`
	B08 float64 `json:"B08"`
}

// PixelResult holds both output products for one pixel
type PixelResult struct {
	RGB        [3]float64 `json:"rgb"`
	FalseColor [3]float64 `json:"falseColor"`
}

// Product describes which bands feed each channel of an output product
type Product struct {
	ID       string
	Channels [3]Band
}

// Package evalscript renders Sentinel Hub VERSION=3 evalscripts.
package evalscript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/chrissnell/bandmap/internal/bandmap"
)

// Sample types accepted by Sentinel Hub output declarations
var SampleTypes = []string{"INT8", "UINT8", "INT16", "UINT16", "FLOAT32", "AUTO"}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var scriptTemplate = template.Must(template.New("evalscript").Parse(`//VERSION=3
function setup() {
  return {{.Setup}};
}

function evaluatePixel(sample) {
  return {
{{- range .Outputs}}
    {{.ID}}: [{{.Expr}}],
{{- end}}
  };
}
`))

type scriptData struct {
	Setup   string
	Outputs []outputExpr
}

type outputExpr struct {
	ID   string
	Expr string
}

type rawInput struct {
	Bands []string `json:"bands"`
}

type rawOutput struct {
	ID         string `json:"id"`
	Bands      int    `json:"bands"`
	SampleType string `json:"sampleType,omitempty"`
}

type rawSetup struct {
	Input  []rawInput  `json:"input"`
	Output []rawOutput `json:"output"`
}

// BandMap renders the band mapper as an evalscript. setup() returns the
// mapper's descriptor and evaluatePixel returns every product.
func BandMap() (string, error) {
	setup := bandmap.Describe()
	if err := setup.Validate(); err != nil {
		return "", fmt.Errorf("band map descriptor is invalid: %w", err)
	}

	scale := strconv.FormatFloat(bandmap.ScaleFactor, 'g', -1, 64)
	var outputs []outputExpr
	for _, p := range bandmap.Products() {
		terms := make([]string, 0, len(p.Channels))
		for _, b := range p.Channels {
			terms = append(terms, fmt.Sprintf("%s * sample.%s", scale, b))
		}
		outputs = append(outputs, outputExpr{ID: p.ID, Expr: strings.Join(terms, ", ")})
	}

	return render(setup, outputs)
}

// RawBands renders an evalscript that returns each band unmodified as its
// own single-channel output.
func RawBands(bands []string, sampleType string) (string, error) {
	if len(bands) == 0 {
		return "", fmt.Errorf("no bands requested")
	}
	if sampleType != "" && !ValidSampleType(sampleType) {
		return "", fmt.Errorf("unknown sample type %q, expected one of %s", sampleType, strings.Join(SampleTypes, ", "))
	}

	setup := rawSetup{Input: []rawInput{{Bands: bands}}}
	outputs := make([]outputExpr, 0, len(bands))
	for _, b := range bands {
		if !identifier.MatchString(b) {
			return "", fmt.Errorf("invalid band name %q", b)
		}
		setup.Output = append(setup.Output, rawOutput{ID: b, Bands: 1, SampleType: sampleType})
		outputs = append(outputs, outputExpr{ID: b, Expr: "sample." + b})
	}

	return render(setup, outputs)
}

// ValidSampleType reports whether t is a Sentinel Hub sample type
func ValidSampleType(t string) bool {
	for _, st := range SampleTypes {
		if st == t {
			return true
		}
	}
	return false
}

func render(setup any, outputs []outputExpr) (string, error) {
	setupJSON, err := json.MarshalIndent(setup, "  ", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode setup: %w", err)
	}

	var buf bytes.Buffer
	err = scriptTemplate.Execute(&buf, scriptData{Setup: string(setupJSON), Outputs: outputs})
	if err != nil {
		return "", fmt.Errorf("failed to render evalscript: %w", err)
	}
	return buf.String(), nil
}

package sentinelhub

import (
	"fmt"
	"time"

	"github.com/chrissnell/bandmap/internal/bandmap"
	"github.com/chrissnell/bandmap/internal/evalscript"
)

// MaxDimension is the largest width or height the Process API accepts
const MaxDimension = 2500

// DefaultFormat is the MIME type requested for every output
const DefaultFormat = "image/tiff"

// DataRequestParams describe the area, period and size of a process request
type DataRequestParams struct {
	Dataset    string
	Bands      []string
	Width      int
	Height     int
	TimeRange  TimeRange
	BBox       [4]float64 // min lon, min lat, max lon, max lat
	SampleType string
	Format     string
}

func (p DataRequestParams) validate() error {
	if p.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("size must be positive, got %dx%d", p.Width, p.Height)
	}
	if p.Width > MaxDimension || p.Height > MaxDimension {
		return fmt.Errorf("size %dx%d exceeds %d pixels per side", p.Width, p.Height, MaxDimension)
	}

	minLon, minLat, maxLon, maxLat := p.BBox[0], p.BBox[1], p.BBox[2], p.BBox[3]
	if minLon >= maxLon || minLat >= maxLat {
		return fmt.Errorf("bbox %v is empty or inverted", p.BBox)
	}
	if minLon < -180 || maxLon > 180 || minLat < -90 || maxLat > 90 {
		return fmt.Errorf("bbox %v is outside lon/lat bounds", p.BBox)
	}

	from, err := time.Parse(time.RFC3339, p.TimeRange.From)
	if err != nil {
		return fmt.Errorf("invalid time range start: %w", err)
	}
	to, err := time.Parse(time.RFC3339, p.TimeRange.To)
	if err != nil {
		return fmt.Errorf("invalid time range end: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("time range ends before it starts")
	}

	return nil
}

func (p DataRequestParams) newRequest(script string, identifiers []string) *ProcessRequest {
	format := p.Format
	if format == "" {
		format = DefaultFormat
	}

	responses := make([]OutputResponse, 0, len(identifiers))
	for _, id := range identifiers {
		responses = append(responses, OutputResponse{
			Identifier: id,
			Format:     OutputFormat{Type: format},
		})
	}

	return &ProcessRequest{
		Input: ProcessInput{
			Bounds: Bounds{
				BBox:       p.BBox[:],
				Properties: BoundsProperties{CRS: CRS84},
			},
			Data: []InputData{
				{
					Type:       p.Dataset,
					DataFilter: DataFilter{TimeRange: p.TimeRange},
				},
			},
		},
		Output: ProcessOutput{
			Width:     p.Width,
			Height:    p.Height,
			Responses: responses,
		},
		Evalscript: script,
	}
}

// NewDataRequest builds a request returning the raw values of p.Bands,
// one response per band.
func NewDataRequest(p DataRequestParams) (*ProcessRequest, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	script, err := evalscript.RawBands(p.Bands, p.SampleType)
	if err != nil {
		return nil, err
	}

	return p.newRequest(script, p.Bands), nil
}

// NewBandMapRequest builds a request that runs the band mapper server side
// and returns the rgb and falseColor products. p.Bands and p.SampleType are ignored.
func NewBandMapRequest(p DataRequestParams) (*ProcessRequest, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	script, err := evalscript.BandMap()
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, o := range bandmap.Describe().Output {
		ids = append(ids, o.ID)
	}

	return p.newRequest(script, ids), nil
}

package app

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chrissnell/bandmap/internal/sentinelhub"
)

// Datasets writes the dataset names known to Sentinel Hub
func (a *App) Datasets(ctx context.Context) error {
	client, err := a.newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	names, err := client.DatasetNames(ctx)
	if err != nil {
		return fmt.Errorf("error listing datasets: %w", err)
	}
	return a.formatter.Write(a.out, names)
}

// Bands writes the band names of one dataset
func (a *App) Bands(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bands <dataset>")
	}

	client, err := a.newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	names, err := client.BandNames(ctx, args[0])
	if err != nil {
		return fmt.Errorf("error listing bands of %s: %w", args[0], err)
	}
	return a.formatter.Write(a.out, names)
}

// TokenInfo writes the details of the session token
func (a *App) TokenInfo(ctx context.Context) error {
	client, err := a.newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.TokenInfo(ctx)
	if err != nil {
		return fmt.Errorf("error fetching token info: %w", err)
	}
	return a.formatter.Write(a.out, info)
}

// Request builds a process request. With -bands it requests the raw bands,
// otherwise it runs the band mapper.
func (a *App) Request(args []string) error {
	preq, err := buildRequest(args)
	if err != nil {
		return err
	}
	return a.formatter.Write(a.out, preq)
}

// Process submits a process request read from a JSON file and writes the
// returned payload to -output.
func (a *App) Process(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	requestFile := fs.String("request", "", "Process request JSON file (see the request command)")
	outputFile := fs.String("output", "", "File receiving the response payload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *requestFile == "" || *outputFile == "" {
		return fmt.Errorf("usage: process -request <request.json> -output <file>")
	}

	raw, err := os.ReadFile(*requestFile)
	if err != nil {
		return fmt.Errorf("error reading process request: %w", err)
	}
	var preq sentinelhub.ProcessRequest
	if err := json.Unmarshal(raw, &preq); err != nil {
		return fmt.Errorf("error decoding process request: %w", err)
	}

	client, err := a.newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Process(ctx, &preq)
	if err != nil {
		return fmt.Errorf("error processing request: %w", err)
	}

	if err := os.WriteFile(*outputFile, resp.Data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", *outputFile, err)
	}

	a.logger.Infow("process response written",
		"file", *outputFile,
		"mime_type", resp.MIMEType,
		"bytes", len(resp.Data),
	)
	return nil
}

func buildRequest(args []string) (*sentinelhub.ProcessRequest, error) {
	fs := flag.NewFlagSet("request", flag.ContinueOnError)
	dataset := fs.String("dataset", "S2L2A", "Dataset to read")
	bbox := fs.String("bbox", "", "Bounding box as min-lon,min-lat,max-lon,max-lat")
	from := fs.String("from", "", "Start of the time range (RFC 3339)")
	to := fs.String("to", "", "End of the time range (RFC 3339)")
	width := fs.Int("width", 512, "Output width in pixels")
	height := fs.Int("height", 512, "Output height in pixels")
	bands := fs.String("bands", "", "Comma-separated raw bands; empty runs the band mapper")
	sampleType := fs.String("sample-type", "", "Sample type for raw bands, e.g. INT8, UINT16, FLOAT32")
	format := fs.String("format", sentinelhub.DefaultFormat, "Output MIME type")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	box, err := parseBBox(*bbox)
	if err != nil {
		return nil, err
	}

	p := sentinelhub.DataRequestParams{
		Dataset:    *dataset,
		Bands:      splitList(*bands),
		Width:      *width,
		Height:     *height,
		TimeRange:  sentinelhub.TimeRange{From: *from, To: *to},
		BBox:       box,
		SampleType: strings.ToUpper(*sampleType),
		Format:     *format,
	}

	if len(p.Bands) > 0 {
		return sentinelhub.NewDataRequest(p)
	}
	return sentinelhub.NewBandMapRequest(p)
}

func parseBBox(s string) ([4]float64, error) {
	var box [4]float64
	parts := splitList(s)
	if len(parts) != 4 {
		return box, fmt.Errorf("bbox needs four comma-separated numbers, got %q", s)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return box, fmt.Errorf("invalid bbox value %q: %w", part, err)
		}
		box[i] = v
	}
	return box, nil
}

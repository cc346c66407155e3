package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chrissnell/bandmap/internal/bandmap"
	"github.com/chrissnell/bandmap/internal/evalscript"
	"github.com/chrissnell/bandmap/internal/samples"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PixelRow is one transformed CSV row as written to the output
type PixelRow struct {
	Row        int        `json:"row"`
	RGB        [3]float64 `json:"rgb"`
	FalseColor [3]float64 `json:"falseColor"`
}

// ChannelStats summarises one output channel across a run
type ChannelStats struct {
	Product string  `json:"product"`
	Channel int     `json:"channel"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
}

// Summary describes a CSV transform run
type Summary struct {
	Rows        int            `json:"rows"`
	Transformed int            `json:"transformed"`
	Rejected    int            `json:"rejected"`
	Channels    []ChannelStats `json:"channels"`
}

// Describe writes the setup descriptor
func (a *App) Describe() error {
	return a.formatter.Write(a.out, bandmap.Describe())
}

// Evalscript writes the band mapper evalscript as plain text
func (a *App) Evalscript() error {
	script, err := evalscript.BandMap()
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.out, script)
	return err
}

// RawEvalscript writes an evalscript returning the given bands unmodified.
// args: <band,band,...> [sample type]
func (a *App) RawEvalscript(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: raw-evalscript <band,band,...> [sample type]")
	}
	sampleType := ""
	if len(args) == 2 {
		sampleType = strings.ToUpper(args[1])
	}

	script, err := evalscript.RawBands(splitList(args[0]), sampleType)
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.out, script)
	return err
}

// Transform maps a single sample given as a JSON object
func (a *App) Transform(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf(`usage: transform '{"B02":0.1,"B03":0.2,"B04":0.3,"B08":0.4}'`)
	}

	var s bandmap.Sample
	if err := json.Unmarshal([]byte(args[0]), &s); err != nil {
		return fmt.Errorf("error decoding sample: %w", err)
	}

	result, err := bandmap.Transform(s)
	if err != nil {
		return err
	}
	return a.formatter.Write(a.out, result)
}

func (a *App) transformCSVFile(args []string) error {
	fs := flag.NewFlagSet("transform-csv", flag.ContinueOnError)
	strict := fs.Bool("strict", false, "Stop at the first invalid row instead of skipping it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: transform-csv [-strict] <file.csv|->")
	}

	var in io.Reader = os.Stdin
	if name := fs.Arg(0); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("error opening samples: %w", err)
		}
		defer f.Close()
		in = f
	}

	summary, err := a.TransformCSV(in, *strict)
	if err != nil {
		return err
	}

	a.logger.Infow("transform complete",
		"rows", summary.Rows,
		"transformed", summary.Transformed,
		"rejected", summary.Rejected,
	)
	for _, c := range summary.Channels {
		a.logger.Debugw("channel range",
			"product", c.Product, "channel", c.Channel,
			"min", c.Min, "max", c.Max, "mean", c.Mean,
		)
	}
	return nil
}

// TransformCSV transforms every row of a CSV sample file and writes one
// PixelRow per valid row. Invalid samples and malformed rows are logged and
// skipped unless strict is set.
func (a *App) TransformCSV(in io.Reader, strict bool) (*Summary, error) {
	reader, err := samples.NewReader(in)
	if err != nil {
		return nil, err
	}

	products := bandmap.Products()
	channels := make(map[string]*[3][]float64, len(products))
	for _, p := range products {
		channels[p.ID] = &[3][]float64{}
	}

	summary := &Summary{}
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		summary.Rows++

		var result bandmap.PixelResult
		if err == nil {
			result, err = bandmap.Transform(rec.Sample)
		}
		if err != nil {
			if !skippable(err) || strict {
				return summary, err
			}
			summary.Rejected++
			a.logger.Warnw("skipping invalid row", "row", rec.Row, "error", err)
			continue
		}

		summary.Transformed++
		for _, p := range products {
			values, _ := result.Product(p.ID)
			for i, v := range values {
				channels[p.ID][i] = append(channels[p.ID][i], v)
			}
		}

		err = a.formatter.Write(a.out, PixelRow{
			Row:        rec.Row,
			RGB:        result.RGB,
			FalseColor: result.FalseColor,
		})
		if err != nil {
			return summary, fmt.Errorf("error writing row %d: %w", rec.Row, err)
		}
	}

	if summary.Transformed > 0 {
		for _, p := range products {
			for i, values := range channels[p.ID] {
				summary.Channels = append(summary.Channels, ChannelStats{
					Product: p.ID,
					Channel: i,
					Min:     floats.Min(values),
					Max:     floats.Max(values),
					Mean:    stat.Mean(values, nil),
				})
			}
		}
	}

	return summary, nil
}

func skippable(err error) bool {
	return errors.Is(err, bandmap.ErrInvalidSample) || errors.Is(err, samples.ErrMalformedRow)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

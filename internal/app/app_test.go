package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/chrissnell/bandmap/internal/bandmap"
	"github.com/chrissnell/bandmap/internal/samples"
	"github.com/chrissnell/bandmap/internal/sentinelhub"
	"github.com/chrissnell/bandmap/pkg/config"
	"github.com/chrissnell/bandmap/pkg/responseformat"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	formatter, err := responseformat.NewFormatter(responseformat.FormatJSON)
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}
	var out bytes.Buffer
	return New(config.NewEnvProvider(), zap.NewNop().Sugar(), formatter, &out), &out
}

// withServer points the app's Sentinel Hub client at handler
func withServer(t *testing.T, a *App, handler http.Handler) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a.newClient = func(ctx context.Context) (*sentinelhub.Client, error) {
		return sentinelhub.NewWithHTTPClient(srv.Client(), sentinelhub.Options{
			APIURL:    srv.URL + "/api/v1",
			OAuth2URL: srv.URL + "/oauth",
		}), nil
	}
}

func TestRunDescribe(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.Run(context.Background(), "describe", nil); err != nil {
		t.Fatalf("Run(describe) error = %v", err)
	}

	var got bandmap.Setup
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if !reflect.DeepEqual(got, bandmap.Describe()) {
		t.Errorf("describe wrote %+v", got)
	}
}

func TestRunEvalscript(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.Run(context.Background(), "evalscript", nil); err != nil {
		t.Fatalf("Run(evalscript) error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "//VERSION=3") {
		t.Errorf("evalscript output = %q", out.String())
	}

	out.Reset()
	if err := a.Run(context.Background(), "raw-evalscript", []string{"B02,B08", "uint16"}); err != nil {
		t.Fatalf("Run(raw-evalscript) error = %v", err)
	}
	if !strings.Contains(out.String(), `"sampleType": "UINT16"`) {
		t.Errorf("raw-evalscript output = %q", out.String())
	}
}

func TestRunTransform(t *testing.T) {
	tests := []struct {
		name    string
		sample  string
		want    bandmap.PixelResult
		wantErr error
	}{
		{
			name:   "reference pixel",
			sample: `{"B02":0.1,"B03":0.2,"B04":0.3,"B08":0.4}`,
			want: bandmap.PixelResult{
				RGB:        [3]float64{0.75, 0.5, 0.25},
				FalseColor: [3]float64{1.0, 0.75, 0.5},
			},
		},
		{
			name:    "missing band",
			sample:  `{"B02":0.1,"B03":0.2,"B04":0.3}`,
			wantErr: bandmap.ErrInvalidSample,
		},
		{
			name:    "non-numeric band",
			sample:  `{"B02":"x","B03":0.2,"B04":0.3,"B08":0.4}`,
			wantErr: bandmap.ErrInvalidSample,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := newTestApp(t)
			err := a.Run(context.Background(), "transform", []string{tt.sample})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run(transform) error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run(transform) error = %v", err)
			}

			var got bandmap.PixelResult
			if err := json.Unmarshal(out.Bytes(), &got); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			if !floats.EqualApprox(got.RGB[:], tt.want.RGB[:], 1e-12) ||
				!floats.EqualApprox(got.FalseColor[:], tt.want.FalseColor[:], 1e-12) {
				t.Errorf("transform wrote %+v, want %+v", got, tt.want)
			}
		})
	}
}

const sampleCSV = `B02,B03,B04,B08
0.1,0.2,0.3,0.4
0.1,oops,0.3,0.4
0.3,0.2,0.1,0.0
`

func TestTransformCSV(t *testing.T) {
	a, out := newTestApp(t)

	summary, err := a.TransformCSV(strings.NewReader(sampleCSV), false)
	if err != nil {
		t.Fatalf("TransformCSV() error = %v", err)
	}
	if summary.Rows != 3 || summary.Transformed != 2 || summary.Rejected != 1 {
		t.Errorf("summary = %+v, want 3 rows, 2 transformed, 1 rejected", summary)
	}

	var rows []PixelRow
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var row PixelRow
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			t.Fatalf("output line is not JSON: %v", err)
		}
		rows = append(rows, row)
	}
	if len(rows) != 2 || rows[0].Row != 1 || rows[1].Row != 3 {
		t.Fatalf("rows = %+v", rows)
	}

	if len(summary.Channels) != 6 {
		t.Fatalf("got %d channel stats, want 6", len(summary.Channels))
	}
	// rgb red channel is 2.5*B04 over 0.3 and 0.1
	red := summary.Channels[0]
	if red.Product != bandmap.ProductRGB || red.Channel != 0 {
		t.Fatalf("first channel = %+v", red)
	}
	if !floats.EqualApprox([]float64{red.Min, red.Max, red.Mean}, []float64{0.25, 0.75, 0.5}, 1e-12) {
		t.Errorf("red channel stats = %+v", red)
	}
}

func TestTransformCSVSkipsMalformedRows(t *testing.T) {
	input := "B02,B03,B04,B08\n0.1,0.2,0.3,0.4\n0.1,0\"2,0.3,0.4\n0.3,0.2,0.1,0.0\n"

	a, out := newTestApp(t)
	summary, err := a.TransformCSV(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("TransformCSV() error = %v", err)
	}
	if summary.Rows != 3 || summary.Transformed != 2 || summary.Rejected != 1 {
		t.Errorf("summary = %+v, want 3 rows, 2 transformed, 1 rejected", summary)
	}
	if lines := strings.Count(out.String(), "\n"); lines != 2 {
		t.Errorf("wrote %d lines, want 2", lines)
	}

	a, _ = newTestApp(t)
	summary, err = a.TransformCSV(strings.NewReader(input), true)
	if !errors.Is(err, samples.ErrMalformedRow) {
		t.Fatalf("TransformCSV(strict) error = %v, want ErrMalformedRow", err)
	}
	if summary.Transformed != 1 {
		t.Errorf("summary = %+v, want 1 transformed before failing", summary)
	}
}

func TestTransformCSVStrict(t *testing.T) {
	a, _ := newTestApp(t)

	summary, err := a.TransformCSV(strings.NewReader(sampleCSV), true)
	if !errors.Is(err, bandmap.ErrInvalidSample) {
		t.Fatalf("TransformCSV(strict) error = %v, want ErrInvalidSample", err)
	}
	if summary.Transformed != 1 {
		t.Errorf("summary = %+v, want 1 transformed before failing", summary)
	}
}

func TestTransformCSVFile(t *testing.T) {
	a, out := newTestApp(t)
	path := filepath.Join(t.TempDir(), "samples.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0600); err != nil {
		t.Fatalf("failed to write samples: %v", err)
	}

	if err := a.Run(context.Background(), "transform-csv", []string{path}); err != nil {
		t.Fatalf("Run(transform-csv) error = %v", err)
	}
	if lines := strings.Count(out.String(), "\n"); lines != 2 {
		t.Errorf("wrote %d lines, want 2", lines)
	}

	if err := a.Run(context.Background(), "transform-csv", []string{"-strict", path}); err == nil {
		t.Errorf("Run(transform-csv -strict) error = nil, want error")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	a, _ := newTestApp(t)
	for _, cmd := range []string{"", "teleport"} {
		if err := a.Run(context.Background(), cmd, nil); err == nil {
			t.Errorf("Run(%q) error = nil, want error", cmd)
		}
	}
}

func TestRunDatasetsAndBands(t *testing.T) {
	a, out := newTestApp(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/process/dataset", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":["S2L1C","S2L2A"]}`)
	})
	mux.HandleFunc("/api/v1/process/dataset/S2L2A/bands", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":["B02","B03","B04","B08"]}`)
	})
	withServer(t, a, mux)

	if err := a.Run(context.Background(), "datasets", nil); err != nil {
		t.Fatalf("Run(datasets) error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != `["S2L1C","S2L2A"]` {
		t.Errorf("datasets wrote %s", got)
	}

	out.Reset()
	if err := a.Run(context.Background(), "bands", []string{"S2L2A"}); err != nil {
		t.Fatalf("Run(bands) error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != `["B02","B03","B04","B08"]` {
		t.Errorf("bands wrote %s", got)
	}

	if err := a.Run(context.Background(), "bands", nil); err == nil {
		t.Errorf("Run(bands) without dataset error = nil, want error")
	}
}

func TestRunRequestAndProcess(t *testing.T) {
	a, out := newTestApp(t)
	args := []string{
		"-dataset", "S2L1C",
		"-bbox", "13.822,45.850,14.559,46.291",
		"-from", "2018-10-01T00:00:00Z",
		"-to", "2018-10-10T00:00:00Z",
	}
	if err := a.Run(context.Background(), "request", args); err != nil {
		t.Fatalf("Run(request) error = %v", err)
	}

	var preq sentinelhub.ProcessRequest
	if err := json.Unmarshal(out.Bytes(), &preq); err != nil {
		t.Fatalf("request output is not JSON: %v", err)
	}
	if len(preq.Output.Responses) != 2 || preq.Output.Responses[0].Identifier != "rgb" {
		t.Fatalf("request responses = %+v", preq.Output.Responses)
	}

	dir := t.TempDir()
	requestFile := filepath.Join(dir, "request.json")
	outputFile := filepath.Join(dir, "response.tar")
	if err := os.WriteFile(requestFile, out.Bytes(), 0600); err != nil {
		t.Fatalf("failed to write request: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/process", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/tar")
		io.WriteString(w, "payload")
	})
	withServer(t, a, mux)

	err := a.Run(context.Background(), "process", []string{"-request", requestFile, "-output", outputFile})
	if err != nil {
		t.Fatalf("Run(process) error = %v", err)
	}
	data, err := os.ReadFile(outputFile)
	if err != nil || string(data) != "payload" {
		t.Errorf("output file = %q, %v", data, err)
	}
}

func TestRunRequestBadBBox(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.Run(context.Background(), "request", []string{"-bbox", "1,2,3"})
	if err == nil {
		t.Errorf("Run(request) error = nil, want error")
	}
}

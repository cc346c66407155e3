package evalscript

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/chrissnell/bandmap/internal/bandmap"
)

// setupObject pulls the object literal returned by setup() out of a script
func setupObject(t *testing.T, script string) []byte {
	t.Helper()
	start := strings.Index(script, "return {")
	end := strings.Index(script, ";\n}")
	if start < 0 || end < 0 || end < start {
		t.Fatalf("could not locate setup() body in:\n%s", script)
	}
	return []byte(script[start+len("return ") : end])
}

func TestBandMap(t *testing.T) {
	script, err := BandMap()
	if err != nil {
		t.Fatalf("BandMap() error = %v", err)
	}

	if !strings.HasPrefix(script, "//VERSION=3\n") {
		t.Errorf("script does not start with version header:\n%s", script)
	}

	for _, line := range []string{
		"rgb: [2.5 * sample.B04, 2.5 * sample.B03, 2.5 * sample.B02],",
		"falseColor: [2.5 * sample.B08, 2.5 * sample.B04, 2.5 * sample.B03],",
		"function evaluatePixel(sample) {",
	} {
		if !strings.Contains(script, line) {
			t.Errorf("script is missing %q:\n%s", line, script)
		}
	}

	var setup bandmap.Setup
	if err := json.Unmarshal(setupObject(t, script), &setup); err != nil {
		t.Fatalf("setup() does not return a JSON object: %v", err)
	}
	if !reflect.DeepEqual(setup, bandmap.Describe()) {
		t.Errorf("setup() = %+v, want %+v", setup, bandmap.Describe())
	}
}

func TestRawBands(t *testing.T) {
	tests := []struct {
		name       string
		bands      []string
		sampleType string
		wantErr    bool
	}{
		{name: "single band", bands: []string{"B02"}, sampleType: "INT8"},
		{name: "multi band", bands: []string{"B02", "B03", "B04", "B08"}, sampleType: "UINT16"},
		{name: "auto sample type", bands: []string{"B8A"}},
		{name: "no bands", wantErr: true},
		{name: "bad sample type", bands: []string{"B02"}, sampleType: "INT64", wantErr: true},
		{name: "bad band name", bands: []string{"B02); evil("}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := RawBands(tt.bands, tt.sampleType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RawBands() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			var setup rawSetup
			if err := json.Unmarshal(setupObject(t, script), &setup); err != nil {
				t.Fatalf("setup() does not return a JSON object: %v", err)
			}
			if !reflect.DeepEqual(setup.Input[0].Bands, tt.bands) {
				t.Errorf("input bands = %v, want %v", setup.Input[0].Bands, tt.bands)
			}
			if len(setup.Output) != len(tt.bands) {
				t.Fatalf("got %d outputs, want %d", len(setup.Output), len(tt.bands))
			}
			for i, b := range tt.bands {
				o := setup.Output[i]
				if o.ID != b || o.Bands != 1 || o.SampleType != tt.sampleType {
					t.Errorf("output[%d] = %+v", i, o)
				}
				if !strings.Contains(script, b+": [sample."+b+"],") {
					t.Errorf("evaluatePixel does not return band %s:\n%s", b, script)
				}
			}
		})
	}
}

// Package sentinelhub is a client for the Sentinel Hub Process API
package sentinelhub

import "fmt"

const (
	DefaultOAuth2URL = "https://services.sentinel-hub.com/oauth"
	DefaultAPIURL    = "https://services.sentinel-hub.com/api/v1"

	// CRS84 is the CRS used for lon/lat bounding boxes
	CRS84 = "http://www.opengis.net/def/crs/EPSG/0/4326"
)

// APIError is the error envelope returned by Sentinel Hub
type APIError struct {
	Status  int    `json:"status"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("sentinel hub error %d %s (%s): %s", e.Status, e.Reason, e.Code, e.Message)
	}
	return fmt.Sprintf("sentinel hub error %d %s: %s", e.Status, e.Reason, e.Message)
}

type errorResponse struct {
	Error *APIError `json:"error"`
}

// listResponse wraps the catalog endpoints
type listResponse struct {
	Data []string `json:"data"`
}

// TokenInfo is the response from <oauth2>/tokeninfo
type TokenInfo struct {
	Subject    string `json:"sub"`
	Audience   string `json:"aud"`
	JTI        string `json:"jti"`
	Expires    int64  `json:"exp"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	SID        string `json:"sid"`
	Active     bool   `json:"active"`
}

// ProcessRequest is the body of a POST to /process
type ProcessRequest struct {
	Input      ProcessInput  `json:"input"`
	Output     ProcessOutput `json:"output"`
	Evalscript string        `json:"evalscript"`
}

type ProcessInput struct {
	Bounds Bounds      `json:"bounds"`
	Data   []InputData `json:"data"`
}

type Bounds struct {
	BBox       []float64        `json:"bbox"`
	Properties BoundsProperties `json:"properties"`
}

type BoundsProperties struct {
	CRS string `json:"crs"`
}

type InputData struct {
	Type       string     `json:"type"`
	DataFilter DataFilter `json:"dataFilter"`
}

type DataFilter struct {
	TimeRange TimeRange `json:"timeRange"`
}

type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type ProcessOutput struct {
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Responses []OutputResponse `json:"responses"`
}

type OutputResponse struct {
	Identifier string       `json:"identifier"`
	Format     OutputFormat `json:"format"`
}

type OutputFormat struct {
	Type string `json:"type"`
}

// ProcessResponse carries the raw payload returned by /process
type ProcessResponse struct {
	MIMEType string
	Data     []byte
}

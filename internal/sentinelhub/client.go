package sentinelhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chrissnell/bandmap/internal/constants"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Options configures a Client. Empty fields take defaults.
type Options struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	OAuth2URL    string
	Timeout      time.Duration
	Logger       *zap.SugaredLogger
}

// Client talks to the Sentinel Hub catalog and Process API
type Client struct {
	httpClient *http.Client
	apiURL     string
	oauth2URL  string
	logger     *zap.SugaredLogger
}

func (o *Options) setDefaults() {
	if o.APIURL == "" {
		o.APIURL = DefaultAPIURL
	}
	if o.OAuth2URL == "" {
		o.OAuth2URL = DefaultOAuth2URL
	}
	if o.Timeout == 0 {
		o.Timeout = 60 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	o.APIURL = strings.TrimRight(o.APIURL, "/")
	o.OAuth2URL = strings.TrimRight(o.OAuth2URL, "/")
}

// New creates a client that authenticates with OAuth2 client credentials.
// Missing credentials are read from SH_CLIENT_ID and SH_CLIENT_SECRET.
// The first token is fetched eagerly so bad credentials fail here.
func New(ctx context.Context, opts Options) (*Client, error) {
	opts.setDefaults()
	if opts.ClientID == "" {
		opts.ClientID = os.Getenv(constants.EnvClientID)
	}
	if opts.ClientSecret == "" {
		opts.ClientSecret = os.Getenv(constants.EnvClientSecret)
	}
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("sentinel hub client credentials are not configured")
	}

	cc := clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.OAuth2URL + "/token",
	}

	tok, err := cc.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch oauth2 token: %w", err)
	}

	// refreshes outlive the call that created the session
	sessionCtx := context.WithoutCancel(ctx)
	ts := oauth2.ReuseTokenSource(tok, cc.TokenSource(sessionCtx))
	httpClient := oauth2.NewClient(sessionCtx, ts)
	httpClient.Timeout = opts.Timeout

	opts.Logger.Debugf("authenticated with sentinel hub as client %s", opts.ClientID)
	return newClient(httpClient, opts), nil
}

// NewWithHTTPClient creates a client around an already-authenticated session
func NewWithHTTPClient(httpClient *http.Client, opts Options) *Client {
	opts.setDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return newClient(httpClient, opts)
}

func newClient(httpClient *http.Client, opts Options) *Client {
	return &Client{
		httpClient: httpClient,
		apiURL:     opts.APIURL,
		oauth2URL:  opts.OAuth2URL,
		logger:     opts.Logger,
	}
}

// Close releases idle connections
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// TokenInfo describes the token the session is using
func (c *Client) TokenInfo(ctx context.Context) (*TokenInfo, error) {
	var info TokenInfo
	if err := c.getJSON(ctx, c.oauth2URL+"/tokeninfo", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DatasetNames lists the datasets the Process API can read
func (c *Client) DatasetNames(ctx context.Context) ([]string, error) {
	var resp listResponse
	if err := c.getJSON(ctx, c.apiURL+"/process/dataset", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// BandNames lists the bands of a dataset
func (c *Client) BandNames(ctx context.Context, dataset string) ([]string, error) {
	if dataset == "" {
		return nil, fmt.Errorf("dataset name is empty")
	}
	var resp listResponse
	endpoint := c.apiURL + "/process/dataset/" + url.PathEscape(dataset) + "/bands"
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Process submits a process request and returns the raw payload.
// Multi-response requests come back as application/tar.
func (c *Client) Process(ctx context.Context, preq *ProcessRequest) (*ProcessResponse, error) {
	body, err := json.Marshal(preq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode process request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.apiURL+"/process", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read process response: %w", err)
	}

	return &ProcessResponse{
		MIMEType: resp.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

// do sends a request and turns non-2xx replies into *APIError. The caller
// closes the body of a successful response.
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach sentinel hub: %w", err)
	}
	c.logger.Debugw("sentinel hub request",
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope errorResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		if envelope.Error.Status == 0 {
			envelope.Error.Status = resp.StatusCode
		}
		return envelope.Error
	}

	return &APIError{
		Status:  resp.StatusCode,
		Reason:  http.StatusText(resp.StatusCode),
		Message: strings.TrimSpace(string(raw)),
	}
}

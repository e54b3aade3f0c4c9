// Package backend is the REST client for the IEDI analysis API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/common/config"
	commonhttp "iedi-workers/internal/common/http"
	"iedi-workers/internal/common/logger"
)

const (
	DefaultAnalysesPath = "/api/analyses"
	banksPath           = "/api/banks"

	// maxBodyBytes caps what is read from any response.
	maxBodyBytes = 4 << 20
)

// Endpoint labels, shared by metrics and error details.
const (
	EndpointListBanks       = "GET /api/banks"
	EndpointListAnalyses    = "GET /api/analyses"
	EndpointGetAnalysis     = "GET /api/analyses/{id}"
	EndpointGetBankAnalyses = "GET /api/analyses/{id}/banks"
	EndpointCreateAnalysis  = "POST /api/analyses"
	EndpointDeleteAnalysis  = "DELETE /api/analyses/{id}"
)

type Options struct {
	BaseURL      string
	AnalysesPath string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       logger.Logger
}

// Client performs one request per call; retries belong to the workflow engine.
type Client struct {
	baseURL      string
	analysesPath string
	http         *commonhttp.Client
	logger       logger.Logger
}

func New(opts Options) *Client {
	path := opts.AnalysesPath
	if path == "" {
		path = DefaultAnalysesPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var hc *commonhttp.Client
	if opts.HTTPClient != nil {
		hc = commonhttp.NewClientWith(opts.HTTPClient)
	} else {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = commonhttp.NewClient(timeout)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		analysesPath: strings.TrimRight(path, "/"),
		http:         hc,
		logger:       log.WithFields(map[string]interface{}{"component": "backend"}),
	}
}

func NewFromConfig(cfg config.BackendConfig, log logger.Logger) *Client {
	return New(Options{
		BaseURL:      cfg.BaseURL,
		AnalysesPath: cfg.AnalysesPath,
		Timeout:      config.GetDuration(cfg.Timeout),
		Logger:       log,
	})
}

func (c *Client) ListBanks(ctx context.Context) ([]analysis.Bank, error) {
	var out banksResponse
	if err := c.do(ctx, http.MethodGet, banksPath, EndpointListBanks, nil, &out); err != nil {
		return nil, err
	}
	return out.Banks, nil
}

// ListAnalyses returns analyses newest first, as the backend orders them.
func (c *Client) ListAnalyses(ctx context.Context) ([]Analysis, error) {
	var out analysesResponse
	if err := c.do(ctx, http.MethodGet, c.analysesPath, EndpointListAnalyses, nil, &out); err != nil {
		return nil, err
	}
	for i := range out.Analyses {
		normalize(&out.Analyses[i])
	}
	return out.Analyses, nil
}

func (c *Client) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	var out analysisResponse
	if err := c.do(ctx, http.MethodGet, c.analysisPath(id), EndpointGetAnalysis, nil, &out); err != nil {
		return nil, err
	}
	if out.Analysis == nil {
		return nil, fmt.Errorf("%s: missing analysis object: %w", EndpointGetAnalysis, ErrInvalidResponse)
	}
	normalize(out.Analysis)
	return out.Analysis, nil
}

func (c *Client) GetBankAnalyses(ctx context.Context, id string) ([]BankAnalysis, error) {
	var out bankAnalysesResponse
	if err := c.do(ctx, http.MethodGet, c.analysisPath(id)+"/banks", EndpointGetBankAnalyses, nil, &out); err != nil {
		return nil, err
	}
	return out.BankAnalyses, nil
}

// CreateAnalysis posts a built request. The payload is checked against the backend contract first.
func (c *Client) CreateAnalysis(ctx context.Context, req *analysis.AnalysisRequest) (*Analysis, error) {
	if err := analysis.ValidatePayload(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContractViolation, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode analysis request: %w", err)
	}

	var out analysisResponse
	if err := c.do(ctx, http.MethodPost, c.analysesPath, EndpointCreateAnalysis, body, &out); err != nil {
		return nil, err
	}
	if out.Analysis == nil {
		return nil, fmt.Errorf("%s: missing analysis object: %w", EndpointCreateAnalysis, ErrInvalidResponse)
	}
	normalize(out.Analysis)

	c.logger.Info("analysis created", map[string]interface{}{
		"analysisId": out.Analysis.ID,
		"mode":       string(req.Mode()),
		"banks":      len(req.Banks()),
	})
	return out.Analysis, nil
}

func (c *Client) DeleteAnalysis(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.analysisPath(id), EndpointDeleteAnalysis, nil, nil)
}

func (c *Client) analysisPath(id string) string {
	return c.analysesPath + "/" + url.PathEscape(id)
}

// do sends one request and decodes the JSON answer into out (nil to discard).
func (c *Client) do(ctx context.Context, method, path, endpoint string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req, endpoint)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", endpoint, err)
	}

	c.logger.Debug("backend response", map[string]interface{}{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"bytes":    len(raw),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, endpoint, raw)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%s: empty body: %w", endpoint, ErrInvalidResponse)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %v: %w", endpoint, err, ErrInvalidResponse)
	}
	return nil
}

func apiError(status int, endpoint string, raw []byte) *APIError {
	msg := fmt.Sprintf("Erro HTTP: %d", status)
	var body errorResponse
	if json.Unmarshal(raw, &body) == nil && strings.TrimSpace(body.Error) != "" {
		msg = body.Error
	}
	return &APIError{StatusCode: status, Message: msg, Endpoint: endpoint}
}

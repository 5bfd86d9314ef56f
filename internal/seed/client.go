package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/talentflow/internal/adapters/repository"
	service "github.com/okian/talentflow/internal/app"
	"github.com/okian/talentflow/internal/domain/flow"
	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/signal"
	"github.com/okian/talentflow/internal/domain/types"
)

const defaultTimeout = 30 * time.Second

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// Client calls a talentflow API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{base: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rankings is the GET /rankings response.
type Rankings struct {
	Snapshot repository.SnapshotInfo `json:"snapshot"`
	Entries  []types.Entry           `json:"entries"`
}

// Query carries the optional window and headcount of company queries.
type Query struct {
	Start     string
	End       string
	Headcount *int
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Start != "" {
		v.Set("start", q.Start)
	}
	if q.End != "" {
		v.Set("end", q.End)
	}
	if q.Headcount != nil {
		v.Set("headcount", strconv.Itoa(*q.Headcount))
	}
	return v
}

// Ingest posts profiles to /profiles and returns the ingest report.
func (c *Client) Ingest(ctx context.Context, profiles []Profile) (*service.IngestReport, error) {
	var report service.IngestReport
	if err := c.do(ctx, http.MethodPost, "/profiles", nil, profiles, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Submit posts profiles to /profiles:async and returns the job id.
func (c *Client) Submit(ctx context.Context, profiles []Profile) (string, error) {
	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/profiles:async", nil, profiles, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// Job returns the status of an ingest job.
func (c *Client) Job(ctx context.Context, id string) (service.JobStatus, error) {
	var st service.JobStatus
	err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id), nil, nil, &st)
	return st, err
}

// RunRanking runs algorithm over the optional window.
func (c *Client) RunRanking(ctx context.Context, algorithm, start, end string) (repository.SnapshotInfo, error) {
	body := map[string]string{"algorithm": algorithm, "start": start, "end": end}
	var info repository.SnapshotInfo
	err := c.do(ctx, http.MethodPost, "/rankings", nil, body, &info)
	return info, err
}

// Rankings returns the top limit entries of the latest run of algorithm.
func (c *Client) Rankings(ctx context.Context, algorithm string, limit int) (Rankings, error) {
	v := url.Values{}
	if algorithm != "" {
		v.Set("algorithm", algorithm)
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var r Rankings
	err := c.do(ctx, http.MethodGet, "/rankings", v, nil, &r)
	return r, err
}

// Flow returns flow metrics of one company.
func (c *Client) Flow(ctx context.Context, companyURN string, q Query) (flow.Metrics, error) {
	var m flow.Metrics
	err := c.do(ctx, http.MethodGet, "/companies/"+url.PathEscape(companyURN)+"/flow", q.values(), nil, &m)
	return m, err
}

// Signal returns the investment signal of one company.
func (c *Client) Signal(ctx context.Context, companyURN string, q Query) (signal.Signal, error) {
	var s signal.Signal
	err := c.do(ctx, http.MethodGet, "/companies/"+url.PathEscape(companyURN)+"/signal", q.values(), nil, &s)
	return s, err
}

// Career returns the career path of one profile.
func (c *Client) Career(ctx context.Context, profileURN string) (graph.Career, error) {
	var cr graph.Career
	err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(profileURN)+"/career", nil, nil, &cr)
	return cr, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Code == "" {
			apiErr.Code = "http_error"
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API defines the backend operations used by the production pipeline.
type API interface {
	GetIntentHints(ctx context.Context, sourceFilename string) (*IntentHints, error)
	ScanRetakes(ctx context.Context, req ScanRequest) (*ScanResponse, error)
	PrepareCommands(ctx context.Context, req PrepareRequest) (*PrepareResponse, error)
	ExecuteCommand(ctx context.Context, req ExecuteRequest) (*ExecutionResult, error)
	Synthesize(ctx context.Context, req SynthesizeRequest) (*SynthesizeResponse, error)
	SubmitAssembly(ctx context.Context, req SubmitRequest) (*SubmitResponse, error)
	GetJobStatus(ctx context.Context, jobID string) (*JobStatusResponse, error)
	Publish(ctx context.Context, req PublishRequest) (*PublishResponse, error)
	GetPublishStatus(ctx context.Context, episodeID string) (*PublishStatusResponse, error)
	Precheck(ctx context.Context, req PrecheckRequest) (*PrecheckResult, error)
	GetUsage(ctx context.Context) (*UsageSnapshot, error)
	ResolveCoverArt(ctx context.Context, uploadID string) (*CoverArtResponse, error)
}

// Client talks to the production backend over HTTPS JSON.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a backend client.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("studio base url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("studio api token required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetIntentHints fetches transcript-derived intent counts for an uploaded
// source. Hints are keyed by the source filename; a filename change means a
// different transcript and therefore different hints.
func (c *Client) GetIntentHints(ctx context.Context, sourceFilename string) (*IntentHints, error) {
	sourceFilename = strings.TrimSpace(sourceFilename)
	if sourceFilename == "" {
		return nil, errors.New("source filename required")
	}
	var payload IntentHints
	if err := c.get(ctx, "/sources/"+url.PathEscape(sourceFilename)+"/intent-hints", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ScanRetakes locates retake markers in the uploaded audio.
func (c *Client) ScanRetakes(ctx context.Context, req ScanRequest) (*ScanResponse, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return nil, errors.New("filename required")
	}
	var payload ScanResponse
	if err := c.post(ctx, "/retakes/scan", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PrepareCommands locates spoken-command regions in the uploaded audio.
func (c *Client) PrepareCommands(ctx context.Context, req PrepareRequest) (*PrepareResponse, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return nil, errors.New("filename required")
	}
	var payload PrepareResponse
	if err := c.post(ctx, "/commands/prepare", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ExecuteCommand resolves one spoken command into an edit action.
func (c *Client) ExecuteCommand(ctx context.Context, req ExecuteRequest) (*ExecutionResult, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return nil, errors.New("filename required")
	}
	var payload ExecutionResult
	if err := c.post(ctx, "/commands/execute", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Synthesize renders text into audio with the given voice.
func (c *Client) Synthesize(ctx context.Context, req SynthesizeRequest) (*SynthesizeResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("text required")
	}
	if strings.TrimSpace(req.VoiceID) == "" {
		return nil, errors.New("voice id required")
	}
	var payload SynthesizeResponse
	if err := c.post(ctx, "/speech/synthesize", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SubmitAssembly starts the backend assembly job.
func (c *Client) SubmitAssembly(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	var payload SubmitResponse
	if err := c.post(ctx, "/assembly/jobs", req, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.JobID) == "" {
		return nil, errors.New("submission response missing job id")
	}
	return &payload, nil
}

// GetJobStatus fetches the current state of an assembly job.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*JobStatusResponse, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, errors.New("job id required")
	}
	var payload JobStatusResponse
	if err := c.get(ctx, "/assembly/jobs/"+url.PathEscape(jobID), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Publish publishes or schedules a completed episode.
func (c *Client) Publish(ctx context.Context, req PublishRequest) (*PublishResponse, error) {
	if strings.TrimSpace(req.EpisodeID) == "" {
		return nil, errors.New("episode id required")
	}
	var payload PublishResponse
	if err := c.post(ctx, "/episodes/"+url.PathEscape(req.EpisodeID)+"/publish", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetPublishStatus reports downstream delivery state for an episode.
func (c *Client) GetPublishStatus(ctx context.Context, episodeID string) (*PublishStatusResponse, error) {
	episodeID = strings.TrimSpace(episodeID)
	if episodeID == "" {
		return nil, errors.New("episode id required")
	}
	var payload PublishStatusResponse
	if err := c.get(ctx, "/episodes/"+url.PathEscape(episodeID)+"/publish-status", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Precheck runs the server-side minutes-quota estimate for one attempt.
func (c *Client) Precheck(ctx context.Context, req PrecheckRequest) (*PrecheckResult, error) {
	var payload PrecheckResult
	if err := c.post(ctx, "/quota/precheck", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetUsage fetches the account usage snapshot.
func (c *Client) GetUsage(ctx context.Context) (*UsageSnapshot, error) {
	var payload UsageSnapshot
	if err := c.get(ctx, "/account/usage", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ResolveCoverArt waits for artwork processing and returns the final URL.
func (c *Client) ResolveCoverArt(ctx context.Context, uploadID string) (*CoverArtResponse, error) {
	uploadID = strings.TrimSpace(uploadID)
	if uploadID == "" {
		return nil, errors.New("upload id required")
	}
	var payload CoverArtResponse
	if err := c.get(ctx, "/artwork/"+url.PathEscape(uploadID), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// 202 is the backend's "still processing" signal, not a payload.
	if resp.StatusCode == http.StatusAccepted {
		return decodeAPIError(resp)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return decodeAPIError(resp)
}

type errorEnvelope struct {
	Error struct {
		Code             string  `json:"code"`
		Message          string  `json:"message"`
		MinutesRequired  float64 `json:"minutesRequired"`
		MinutesRemaining float64 `json:"minutesRemaining"`
		RenewsAt         string  `json:"renewsAt"`
	} `json:"error"`
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: codeForStatus(resp.StatusCode)}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if err == nil && len(raw) > 0 {
		var envelope errorEnvelope
		if json.Unmarshal(raw, &envelope) == nil {
			if envelope.Error.Code != "" {
				apiErr.Code = ErrorCode(envelope.Error.Code)
			}
			apiErr.Message = envelope.Error.Message
			apiErr.MinutesRequired = envelope.Error.MinutesRequired
			apiErr.MinutesRemaining = envelope.Error.MinutesRemaining
			apiErr.RenewsAt = envelope.Error.RenewsAt
		}
	}
	return apiErr
}

func codeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusPaymentRequired:
		return CodePaymentRequired
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooEarly, http.StatusAccepted:
		return CodeNotReady
	case http.StatusTooManyRequests:
		return CodeQuotaExceeded
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	default:
		return CodeUnknown
	}
}

package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"
)

// Reason classifies why a scoring call failed. Callers decide per operation
// whether to substitute a fallback result or surface the error.
type Reason string

const (
	ReasonUnavailable Reason = "unavailable" // connection refused / DNS
	ReasonTimeout     Reason = "timeout"
	ReasonProtocol    Reason = "protocol" // non-2xx or undecodable body
)

type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scoring service %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

const DefaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Score asks the oracle to score one lead by id. One shot, no retry: the
// caller owns the retry policy.
func (c *Client) Score(ctx context.Context, leadID int64) (*ScoreResult, error) {
	url := fmt.Sprintf("%s/leads/score-by-id", c.baseURL)

	jsonBody, err := json.Marshal(scoreByIDRequest{LeadID: strconv.FormatInt(leadID, 10)})
	if err != nil {
		return nil, &Error{Reason: ReasonProtocol, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, &Error{Reason: ReasonProtocol, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Reason: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			Reason: ReasonProtocol,
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var response scoreByIDResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &Error{Reason: ReasonProtocol, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &ScoreResult{
		Score:                  clampScore(response.LeadScore),
		Quality:                response.Quality,
		NeedsHumanIntervention: response.NeedsHumanIntervention,
		Details:                response.InteractionDetails,
	}, nil
}

func classify(err error) Reason {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ReasonUnavailable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ReasonUnavailable
	}
	return ReasonProtocol
}

// The oracle contract says 0..100 but the oracle is not trusted to honor it.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

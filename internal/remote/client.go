// Package remote is the client for the spreadsheet endpoint: a single URL
// accepting POSTed {action, data} JSON envelopes and answering JSON with a
// status field.
//
// Error taxonomy matters more than transport detail here. Transport failures
// (endpoint unreachable, garbage response) surface as ErrOffline so the sync
// engine can branch without string-matching error text; a reachable endpoint
// that answers with a non-success status surfaces as *RejectionError.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gurukul/gdl/internal/model"
)

// ErrOffline is the transport-failure sentinel: the endpoint could not be
// reached or did not answer with parseable JSON.
var ErrOffline = errors.New("endpoint unreachable")

// RejectionError is a reachable endpoint refusing an action
// (status != "success").
type RejectionError struct {
	Action  model.Action
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s rejected: %s", e.Action, e.Message)
	}
	return fmt.Sprintf("%s rejected", e.Action)
}

// IsRejection reports whether err is a remote rejection.
// Uses errors.As to handle wrapped errors.
func IsRejection(err error) bool {
	var re *RejectionError
	return errors.As(err, &re)
}

// Client talks to one endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests, custom
// transports). The default client has no timeout: a hung call blocks its
// sync cycle until the transport resolves it, per the engine's
// no-cancellation contract.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the given endpoint URL.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// response is the envelope every endpoint action answers with. Unused
// fields stay zero for actions that do not carry them.
type response struct {
	Status     string      `json:"status"`
	Message    string      `json:"message"`
	User       *model.User `json:"user"`
	TxnID      string      `json:"txnId"`
	Updates    model.Delta `json:"updates"`
	ServerTime int64       `json:"serverTime"`
}

func (c *Client) call(ctx context.Context, action model.Action, data json.RawMessage) (*response, error) {
	body, err := json.Marshal(model.Envelope{Action: action, Data: data})
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", action, ErrOffline, err)
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		// A proxy error page or truncated body is a transport problem,
		// not a rejection.
		return nil, fmt.Errorf("%s: %w: bad response body: %v", action, ErrOffline, err)
	}

	if decoded.Status != "success" {
		return nil, &RejectionError{Action: action, Message: decoded.Message}
	}
	return &decoded, nil
}

// Login authenticates against the endpoint and returns the session user.
func (c *Client) Login(ctx context.Context, username, password string) (model.User, error) {
	data, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("login: %w", err)
	}
	resp, err := c.call(ctx, model.ActionLogin, data)
	if err != nil {
		return model.User{}, err
	}
	if resp.User == nil {
		return model.User{}, &RejectionError{Action: model.ActionLogin, Message: "no user in response"}
	}
	return *resp.User, nil
}

// Ack is the endpoint's acknowledgement of a transmitted mutation. TxnID is
// set only for add_payment.
type Ack struct {
	TxnID string
}

// Transmit sends one queued envelope. Returns ErrOffline-wrapped errors for
// transport failures and *RejectionError when the endpoint refuses.
func (c *Client) Transmit(ctx context.Context, env model.Envelope) (Ack, error) {
	resp, err := c.call(ctx, env.Action, env.Data)
	if err != nil {
		return Ack{}, err
	}
	return Ack{TxnID: resp.TxnID}, nil
}

// SyncStatus classifies a sync_data outcome.
type SyncStatus string

// The three sync_data outcomes.
const (
	SyncSuccess  SyncStatus = "success"
	SyncOffline  SyncStatus = "offline"
	SyncRejected SyncStatus = "error"
)

// SyncResult is the outcome of a delta pull. A transport failure is
// represented as Status SyncOffline rather than an error value, so the
// engine branches on status instead of unwrapping exceptions.
type SyncResult struct {
	Status     SyncStatus
	Updates    model.Delta
	ServerTime int64
	Message    string
}

// SyncData requests remote deltas since the given checkpoint.
func (c *Client) SyncData(ctx context.Context, lastSync int64) SyncResult {
	data, err := json.Marshal(map[string]int64{"lastSync": lastSync})
	if err != nil {
		return SyncResult{Status: SyncRejected, Message: err.Error()}
	}
	resp, err := c.call(ctx, model.ActionSyncData, data)
	if errors.Is(err, ErrOffline) {
		return SyncResult{Status: SyncOffline, Message: err.Error()}
	}
	if err != nil {
		var re *RejectionError
		if errors.As(err, &re) {
			return SyncResult{Status: SyncRejected, Message: re.Message}
		}
		return SyncResult{Status: SyncRejected, Message: err.Error()}
	}
	return SyncResult{
		Status:     SyncSuccess,
		Updates:    resp.Updates,
		ServerTime: resp.ServerTime,
	}
}

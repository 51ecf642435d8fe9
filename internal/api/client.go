package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nof1/dashboard/internal/model"
	"nof1/dashboard/internal/util"
)

// Client is a typed wrapper around the bot's REST backend. It is
// stateless: one request/response exchange per operation, no retries, no
// caching. Retry policy belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client. baseURL includes the version
// prefix, e.g. "http://localhost:8000/api/v1".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// TradeQuery narrows a trade history fetch
type TradeQuery struct {
	Limit  int
	Offset int
	Asset  string
	Action string
}

// StartRequest is the payload for starting the bot
type StartRequest struct {
	Assets   []string `json:"assets"`
	Interval string   `json:"interval"`
}

// RejectRequest is the payload for rejecting a proposal
type RejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

// statusResponse is returned by start/stop and approve/reject
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// successResponse is returned by close/refresh/settings-update
type successResponse struct {
	Success bool `json:"success"`
}

// errorBody covers both FastAPI-style {detail} and envelope-style
// {message} error payloads
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// GetStatus fetches the full BotState snapshot
func (c *Client) GetStatus(ctx context.Context) (*model.BotState, error) {
	var state model.BotState
	if err := c.do(ctx, http.MethodGet, "/bot/status", nil, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// StartBot asks the backend to start the trading loop
func (c *Client) StartBot(ctx context.Context, assets []string, interval string) (string, error) {
	var resp statusResponse
	req := StartRequest{Assets: assets, Interval: interval}
	if err := c.do(ctx, http.MethodPost, "/bot/start", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// StopBot asks the backend to stop the trading loop
func (c *Client) StopBot(ctx context.Context) (string, error) {
	var resp statusResponse
	if err := c.do(ctx, http.MethodPost, "/bot/stop", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// GetPositions fetches the open positions. Legacy read-only path; the
// authoritative source is BotState.Positions.
func (c *Client) GetPositions(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position
	if err := c.do(ctx, http.MethodGet, "/positions/", nil, nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// ClosePosition asks the backend to close the position for an asset.
// Safe to retry when success is false; the client never retries itself.
func (c *Client) ClosePosition(ctx context.Context, asset string) (bool, error) {
	var resp successResponse
	path := fmt.Sprintf("/positions/%s/close", url.PathEscape(asset))
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// GetTrades fetches a page of trade history, newest first as ordered by
// the backend. The client does not re-sort.
func (c *Client) GetTrades(ctx context.Context, q TradeQuery) ([]model.Trade, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(q.Limit))
	query.Set("offset", strconv.Itoa(q.Offset))
	if q.Asset != "" {
		query.Set("asset", q.Asset)
	}
	if q.Action != "" {
		query.Set("action", q.Action)
	}

	var trades []model.Trade
	if err := c.do(ctx, http.MethodGet, "/trades/", query, nil, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// GetSettings fetches the current Settings document
func (c *Client) GetSettings(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	if err := c.do(ctx, http.MethodGet, "/settings/", nil, nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings commits a partial Settings update. Merge semantics are
// server-side.
func (c *Client) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (bool, error) {
	var resp successResponse
	if err := c.do(ctx, http.MethodPut, "/settings/", nil, patch, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// RefreshMarket triggers a backend re-fetch of market data. It does not
// return data; the caller must re-fetch status.
func (c *Client) RefreshMarket(ctx context.Context) (bool, error) {
	var resp successResponse
	if err := c.do(ctx, http.MethodPost, "/market/refresh", nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// GetProposals fetches the pending trade proposals
func (c *Client) GetProposals(ctx context.Context) ([]model.Proposal, error) {
	var proposals []model.Proposal
	if err := c.do(ctx, http.MethodGet, "/proposals/", nil, nil, &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

// ApproveProposal approves a pending proposal
func (c *Client) ApproveProposal(ctx context.Context, id string) error {
	var resp statusResponse
	path := fmt.Sprintf("/proposals/%s/approve", url.PathEscape(id))
	return c.do(ctx, http.MethodPost, path, nil, nil, &resp)
}

// RejectProposal rejects a pending proposal with a reason
func (c *Client) RejectProposal(ctx context.Context, id, reason string) error {
	var resp statusResponse
	path := fmt.Sprintf("/proposals/%s/reject", url.PathEscape(id))
	return c.do(ctx, http.MethodPost, path, nil, RejectRequest{Reason: reason}, &resp)
}

// do performs one request/response exchange. Errors are always surfaced
// to the caller, typed per the failure: NetworkError for transport
// failures, ServerError for non-2xx statuses, ParseError for undecodable
// bodies.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return util.NewParseError("request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return util.NewNetworkError(method+" "+path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return util.NewNetworkError(method+" "+path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return util.NewNetworkError(method+" "+path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return util.NewServerError(resp.StatusCode, extractErrorMessage(raw))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return util.NewParseError("response from "+path, err)
	}
	return nil
}

func extractErrorMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return string(raw)
}

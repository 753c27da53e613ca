// Package api provides a client for the chat-analysis backend API.
//
// The Client exposes one method per backend endpoint and centralizes request
// construction, JSON decoding, and error surfacing. It performs no retries
// and no backoff: every network or decode failure propagates to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	pathChats             = "/api/chats"
	pathAnalyze           = "/api/analyze"
	pathSendReply         = "/api/send_reply"
	pathAnalyticsReport   = "/api/analytics_report"
	pathAnalyticsDownload = "/api/analytics_download"
	pathKnowledgeBase     = "/api/knowledge_base"
	pathAuthStatus        = "/api/auth/status"

	headerContentType        = "Content-Type"
	headerContentDisposition = "Content-Disposition"
	contentTypeJSON          = "application/json"

	maxResponseBodySize = 50 * 1024 * 1024 // 50MB, report downloads included
	errBodyReadLimit    = 4096

	fallbackErrorFmt = "request failed with status %d"
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8080".
	BaseURL string

	// Timeout bounds each request. Zero means no client-side timeout,
	// matching the documented failure policy of the dashboard.
	Timeout time.Duration
}

// Client talks to the chat-analysis backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a backend API client.
func New(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// ListChats fetches the chat list filtered to the given time window.
func (c *Client) ListChats(ctx context.Context, params ListChatsParams) ([]Chat, error) {
	query := url.Values{}
	query.Set("hours", strconv.Itoa(params.Hours))

	if params.StartDate != "" {
		query.Set("start_date", params.StartDate)
	}

	if params.EndDate != "" {
		query.Set("end_date", params.EndDate)
	}

	var resp chatsResponse
	if err := c.do(ctx, http.MethodGet, pathChats, query, nil, &resp); err != nil {
		return nil, err
	}

	chats := resp.Chats
	for i := range chats {
		if chats[i].ChatType == "" {
			chats[i].ChatType = defaultChatType
		}
	}

	return chats, nil
}

// Analyze requests server-side analysis of one chat over a time window.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error) {
	var result AnalysisResult
	if err := c.do(ctx, http.MethodPost, pathAnalyze, nil, req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// SendReply submits reply text for delivery through the messaging integration.
func (c *Client) SendReply(ctx context.Context, chatID int64, text string) (*ReplyResult, error) {
	req := replyRequest{ChatID: chatID, ReplyText: text}

	var result ReplyResult
	if err := c.do(ctx, http.MethodPost, pathSendReply, nil, req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// AnalyticsReport fetches aggregate statistics.
func (c *Client) AnalyticsReport(ctx context.Context) (*AnalyticsReport, error) {
	var report AnalyticsReport
	if err := c.do(ctx, http.MethodGet, pathAnalyticsReport, nil, nil, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

// DownloadReport fetches the binary analytics report.
//
// The endpoint bypasses JSON handling: the server signals a failed download
// by answering with a JSON body instead of a file, without a distinguishing
// HTTP status. A JSON-typed body is therefore converted into an error
// carrying the server's message.
func (c *Client) DownloadReport(ctx context.Context) (*ReportFile, error) {
	start := time.Now()
	endpoint := pathAnalyticsDownload

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRequest(endpoint, statusNetworkError, start)

		return nil, fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	observeRequest(endpoint, strconv.Itoa(resp.StatusCode), start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("read download response: %w", err)
	}

	contentType := resp.Header.Get(headerContentType)
	if isJSONContentType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrReportUnavailable, serverMessage(body, resp.StatusCode))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Message: fmt.Sprintf(fallbackErrorFmt, resp.StatusCode)}
	}

	if len(body) == 0 {
		return nil, ErrEmptyResponse
	}

	return &ReportFile{
		Data:        body,
		ContentType: contentType,
		Filename:    dispositionFilename(resp.Header.Get(headerContentDisposition)),
	}, nil
}

// KnowledgeBase fetches a named knowledge-base text blob.
func (c *Client) KnowledgeBase(ctx context.Context, kbType KnowledgeType) (string, error) {
	query := url.Values{}
	query.Set("type", string(kbType))

	var resp knowledgeResponse
	if err := c.do(ctx, http.MethodGet, pathKnowledgeBase, query, nil, &resp); err != nil {
		return "", err
	}

	return resp.Content, nil
}

// UpdateKnowledgeBase persists a named knowledge-base text blob.
func (c *Client) UpdateKnowledgeBase(ctx context.Context, kbType KnowledgeType, content string) error {
	req := knowledgeUpdateRequest{Type: kbType, Content: content}

	return c.do(ctx, http.MethodPost, pathKnowledgeBase, nil, req, nil)
}

// AuthStatus fetches the backend's messaging session state.
func (c *Client) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	var status AuthStatus
	if err := c.do(ctx, http.MethodGet, pathAuthStatus, nil, nil, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// do performs a JSON request against the backend. A non-2xx response is
// turned into a StatusError carrying the server-supplied {error} message,
// with a generic fallback when the body has none.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, reqBody, out interface{}) error {
	start := time.Now()

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader

	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}

		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRequest(path, statusNetworkError, start)

		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	observeRequest(path, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, errBodyReadLimit))
		if readErr != nil {
			return &StatusError{Code: resp.StatusCode, Message: fmt.Sprintf(fallbackErrorFmt, resp.StatusCode)}
		}

		return &StatusError{Code: resp.StatusCode, Message: serverMessage(body, resp.StatusCode)}
	}

	if out == nil {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}

// serverMessage extracts the {error} string from a response body, falling
// back to a generic message when absent or unparseable.
func serverMessage(body []byte, statusCode int) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}

	return fmt.Sprintf(fallbackErrorFmt, statusCode)
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == contentTypeJSON
}

// dispositionFilename extracts the filename from a Content-Disposition
// header, or returns "" when the header is missing or malformed.
func dispositionFilename(disposition string) string {
	if disposition == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}

	return params["filename"]
}

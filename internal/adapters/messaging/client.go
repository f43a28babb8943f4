// Package messaging implements core.Sender against the WhatsApp Cloud style messaging HTTP API.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"

	"github.com/target/order-notify/internal/core"
)

const (
	// DefaultBaseURL is the messaging API root used when Options.BaseURL is empty.
	DefaultBaseURL = "https://graph.facebook.com/v19.0"
	// DefaultTimeout bounds a single send.
	DefaultTimeout = 10 * time.Second
	// DefaultErrorPath locates the human readable error in a failed response.
	DefaultErrorPath = "error.message"

	maxResponseBodyBytes = 4 << 10
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	ErrorPath  string       // JMESPath expression evaluated against error responses
	HTTPClient *http.Client // Optional: base transport, defaults to http.DefaultClient
	Logger     *slog.Logger
}

// APIError is returned when the messaging API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("messaging api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("messaging api: unexpected status %d: %s", e.StatusCode, e.Message)
}

// Client sends text messages on behalf of a store's business phone number.
type Client struct {
	baseURL   string
	timeout   time.Duration
	errorPath string
	http      *http.Client
	logger    *slog.Logger
}

var _ core.Sender = (*Client)(nil)

// NewClient constructs a Client.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid messaging base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid messaging base URL scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return nil, errors.New("invalid messaging base URL: missing host")
	}

	path := strings.TrimSpace(opts.ErrorPath)
	if path == "" {
		path = DefaultErrorPath
	}
	if _, err := jmespath.Compile(path); err != nil {
		return nil, fmt.Errorf("invalid error path %q: %w", path, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   base,
		timeout:   timeout,
		errorPath: path,
		http:      httpClient,
		logger:    logger.With("component", "messaging_client"),
	}, nil
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// Send posts one text message. Any non-2xx answer is returned as *APIError.
func (c *Client) Send(ctx context.Context, msg core.OutboundMessage) error {
	if msg.Channel.PhoneNumberID == "" || msg.Channel.AccessToken == "" {
		return errors.New("messaging channel credentials are incomplete")
	}

	body, err := json.Marshal(textMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               strings.TrimPrefix(msg.Recipient, "+"),
		Type:             "text",
		Text:             textBody{Body: msg.Text},
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/" + url.PathEscape(msg.Channel.PhoneNumberID) + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.authorizedClient(ctx, msg.Channel.AccessToken).Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	data, readErr := readResponseBody(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil && readErr == nil {
		readErr = closeErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: c.extractError(data)}
	}
	if readErr != nil {
		c.logger.WarnContext(ctx, "read messaging response", "error", readErr)
	}
	return nil
}

// authorizedClient wraps the base client with the store's bearer token.
func (c *Client) authorizedClient(ctx context.Context, token string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

func (c *Client) extractError(data []byte) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return ""
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return strings.TrimSpace(string(data))
	}
	v, err := jmespath.Search(c.errorPath, doc)
	if err != nil || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	out, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(out)
}

func readResponseBody(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(body, maxResponseBodyBytes+1))
	if len(data) > maxResponseBodyBytes {
		data = data[:maxResponseBodyBytes]
		if _, drainErr := io.Copy(io.Discard, body); drainErr != nil && err == nil {
			err = drainErr
		}
	}
	return data, err
}

package api

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

	"golang.org/x/oauth2/clientcredentials"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/logging"
)

const defaultTokenServiceURL = "https://token.botframework.example"

// RESTClientConfig configures the REST client.
type RESTClientConfig struct {
	// ClientID and ClientSecret are the bot's own service identity,
	// exchanged for a service token via the client-credentials flow.
	ClientID     string
	ClientSecret string

	// AuthTokenURL is the OAuth token endpoint for the service identity.
	AuthTokenURL string

	// TokenServiceURL is the base URL of the user token service.
	TokenServiceURL string

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration
}

// RESTClient implements Client over the platform's REST endpoints. Outbound
// activity posts go to the per-conversation service URL carried by the
// conversation reference; token operations go to the token service.
type RESTClient struct {
	cfg  RESTClientConfig
	http *http.Client
	log  *logging.Logger
}

var _ Client = (*RESTClient)(nil)

// NewRESTClient creates a REST client authenticated with the bot's service
// identity.
func NewRESTClient(cfg RESTClientConfig, log *logging.Logger) *RESTClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.TokenServiceURL == "" {
		cfg.TokenServiceURL = defaultTokenServiceURL
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.AuthTokenURL,
		}
		httpClient = cc.Client(context.Background())
		httpClient.Timeout = cfg.Timeout
	}

	return &RESTClient{
		cfg:  cfg,
		http: httpClient,
		log:  log.Sub("api"),
	}
}

// UserToken returns the user token service client.
func (c *RESTClient) UserToken() UserTokenClient {
	return &userTokenClient{c: c}
}

// Conversations returns the conversation service client.
func (c *RESTClient) Conversations() ConversationClient {
	return &conversationClient{c: c}
}

type userTokenClient struct {
	c *RESTClient
}

func (u *userTokenClient) GetToken(ctx context.Context, p GetTokenParams) (*TokenResponse, error) {
	q := url.Values{}
	q.Set("channelId", p.ChannelID)
	q.Set("connectionName", p.ConnectionName)
	q.Set("userId", p.UserID)
	if p.Code != "" {
		q.Set("code", p.Code)
	}

	var tok TokenResponse
	if err := u.c.do(ctx, http.MethodGet, u.c.cfg.TokenServiceURL+"/api/usertoken/GetToken?"+q.Encode(), nil, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (u *userTokenClient) ExchangeToken(ctx context.Context, p ExchangeTokenParams) (*TokenResponse, error) {
	q := url.Values{}
	q.Set("channelId", p.ChannelID)
	q.Set("connectionName", p.ConnectionName)
	q.Set("userId", p.UserID)

	body := map[string]string{"token": p.Token}

	var tok TokenResponse
	if err := u.c.do(ctx, http.MethodPost, u.c.cfg.TokenServiceURL+"/api/usertoken/exchange?"+q.Encode(), body, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (u *userTokenClient) SignOut(ctx context.Context, channelID, connectionName, userID string) error {
	q := url.Values{}
	q.Set("channelId", channelID)
	q.Set("connectionName", connectionName)
	q.Set("userId", userID)

	return u.c.do(ctx, http.MethodDelete, u.c.cfg.TokenServiceURL+"/api/usertoken/SignOut?"+q.Encode(), nil, nil)
}

type conversationClient struct {
	c *RESTClient
}

func (cc *conversationClient) SendToConversation(ctx context.Context, ref activity.ConversationReference, a *activity.Activity) (*activity.Activity, error) {
	base := strings.TrimSuffix(ref.ServiceURL, "/")
	endpoint := fmt.Sprintf("%s/v3/conversations/%s/activities", base, url.PathEscape(ref.Conversation.ID))
	if a.ReplyToID != "" {
		endpoint += "/" + url.PathEscape(a.ReplyToID)
	}

	var sent activity.Activity
	if err := cc.c.do(ctx, http.MethodPost, endpoint, a, &sent); err != nil {
		return nil, err
	}
	// The platform echoes only the assigned ID; carry the content forward.
	if sent.Type == "" {
		id := sent.ID
		sent = *a
		sent.ID = id
	}
	return &sent, nil
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx statuses become a typed *Error.
func (c *RESTClient) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var shape struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &shape) == nil && shape.Error.Message != "" {
			apiErr.Code = shape.Error.Code
			apiErr.Message = shape.Error.Message
		}
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	messagesPath = "/v1/messages"
	contentType  = "application/json"
)

// Gateway is an HTTP client for the external notifier gateway. One gateway
// serves every channel; the channel name travels in the payload.
type Gateway struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// NewGateway creates a gateway client with a short request timeout. A slow
// gateway must not stall an evaluation cycle.
func NewGateway(apiURL, token string, logger *zap.Logger) *Gateway {
	return &Gateway{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: "scholarmatch/notifier",
	}
}

// Channel returns a Channel that delivers through the gateway under the
// given channel name.
func (g *Gateway) Channel(name string) Channel {
	return &gatewayChannel{gateway: g, name: name}
}

type gatewayChannel struct {
	gateway *Gateway
	name    string
}

func (c *gatewayChannel) Name() string { return c.name }

// Deliver posts the message to the gateway. Any transport or status
// failure is reported as "not delivered".
func (c *gatewayChannel) Deliver(ctx context.Context, userID, title, body string) bool {
	ok, err := c.gateway.send(ctx, c.name, userID, title, body)
	if err != nil {
		c.gateway.logger.Warn("gateway delivery failed",
			zap.String("channel", c.name),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return false
	}
	return ok
}

type gatewayRequest struct {
	UserID  string `json:"user_id"`
	Channel string `json:"channel"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

type gatewayResponse struct {
	Success bool `json:"success"`
}

func (g *Gateway) send(ctx context.Context, channel, userID, title, body string) (bool, error) {
	payload, err := json.Marshal(gatewayRequest{
		UserID:  userID,
		Channel: channel,
		Title:   title,
		Body:    body,
	})
	if err != nil {
		return false, err
	}

	url := g.APIURL + messagesPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.token))
	req.Header.Set("User-Agent", g.UserAgent)
	req.Header.Set("Content-Type", contentType)

	g.logger.Debug("make request", zap.String("url", url))
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("bad status: %s", resp.Status)
	}

	var response gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return false, err
	}

	return response.Success, nil
}

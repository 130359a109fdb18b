// Package ledger is the bridge to the scholarship ledger gateway, the
// external source of truth for opportunity, profile, and application
// records. The bridge only reads; all decision logic lives elsewhere.
package ledger

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://gateway.scholarmatch.io"
	userAgent = "scholarmatch/ledger-bridge"
	// Max value the gateway accepts for per_page.
	perPage = 100
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	return &Client{
		ctx:    ctx,
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

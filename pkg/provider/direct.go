package provider

import (
	"context"
	"strings"

	"bpdash/pkg/bitpanda"
	"bpdash/pkg/models"
)

// Direct fetches from the Bitpanda API in this process.
type Direct struct {
	client    *bitpanda.Client
	reference string
}

func NewDirect(client *bitpanda.Client, reference string) *Direct {
	return &Direct{client: client, reference: strings.ToUpper(reference)}
}

func (d *Direct) Name() string { return "bitpanda" }

func (d *Direct) FetchSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error) {
	return d.client.FetchPortfolio(ctx, d.reference)
}

func (d *Direct) FetchUserInfo(ctx context.Context) (models.UserInfo, error) {
	return models.UserInfo{Username: "local", IsDemo: false}, nil
}

// Logout has nothing to end for a local API key.
func (d *Direct) Logout(ctx context.Context) error { return nil }

// TestAuth checks the API key.
func (d *Direct) TestAuth(ctx context.Context) error {
	return d.client.TestAuth(ctx)
}

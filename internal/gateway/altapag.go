package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/brisapay/brisapay/internal/config"
)

// AltaPag connects to the AltaPag PSP, which serves pix and bank-slip
// charges. Credit cards are routed elsewhere; AltaPag does not implement
// that capability.
type AltaPag struct {
	baseURL string
	client  *http.Client
	tokens  *TokenSource
}

type altaPagTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// NewAltaPag builds the AltaPag adapter and registers its token fetcher.
func NewAltaPag(cfg config.ProviderConfig, client *http.Client, tokens *TokenSource) *AltaPag {
	a := &AltaPag{baseURL: cfg.BaseURL, client: client, tokens: tokens}
	tokens.Register(ProviderAltaPag.String(), func(ctx context.Context) (string, time.Duration, error) {
		var resp altaPagTokenResponse
		err := postJSON(ctx, client, cfg.BaseURL+"/oauth/token", "", map[string]string{
			"client_id":     cfg.ClientID,
			"client_secret": cfg.ClientSecret,
			"grant_type":    "client_credentials",
		}, &resp)
		if err != nil {
			return "", 0, err
		}
		return resp.AccessToken, time.Duration(resp.ExpiresIn) * time.Second, nil
	})
	return a
}

// Provider identifies the adapter's provider variant.
func (a *AltaPag) Provider() Provider { return ProviderAltaPag }

// ProcessPix creates an instant-payment charge.
func (a *AltaPag) ProcessPix(ctx context.Context, req PixChargeRequest) (PixCharge, error) {
	token, err := a.tokens.Token(ctx, a.Provider().String())
	if err != nil {
		return PixCharge{}, err
	}
	var charge PixCharge
	if err := postJSON(ctx, a.client, a.baseURL+"/v1/pix/charges", token, req, &charge); err != nil {
		return PixCharge{}, err
	}
	return charge, nil
}

// ProcessBankSlip issues a bank slip for the charge.
func (a *AltaPag) ProcessBankSlip(ctx context.Context, req BankSlipChargeRequest) (BankSlipCharge, error) {
	token, err := a.tokens.Token(ctx, a.Provider().String())
	if err != nil {
		return BankSlipCharge{}, err
	}
	var charge BankSlipCharge
	if err := postJSON(ctx, a.client, a.baseURL+"/v1/bankslips", token, req, &charge); err != nil {
		return BankSlipCharge{}, err
	}
	return charge, nil
}

package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/brisapay/brisapay/internal/config"
)

// VexoCard connects to the VexoCard acquirer. It implements only the
// credit-card capability.
type VexoCard struct {
	baseURL string
	client  *http.Client
	tokens  *TokenSource
}

type vexoCardTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// NewVexoCard builds the VexoCard adapter and registers its token fetcher.
func NewVexoCard(cfg config.ProviderConfig, client *http.Client, tokens *TokenSource) *VexoCard {
	v := &VexoCard{baseURL: cfg.BaseURL, client: client, tokens: tokens}
	tokens.Register(ProviderVexoCard.String(), func(ctx context.Context) (string, time.Duration, error) {
		var resp vexoCardTokenResponse
		err := postJSON(ctx, client, cfg.BaseURL+"/auth/tokens", "", map[string]string{
			"api_key":    cfg.ClientID,
			"api_secret": cfg.ClientSecret,
		}, &resp)
		if err != nil {
			return "", 0, err
		}
		return resp.Token, time.Duration(resp.ExpiresIn) * time.Second, nil
	})
	return v
}

// Provider identifies the adapter's provider variant.
func (v *VexoCard) Provider() Provider { return ProviderVexoCard }

// ProcessCreditCard authorizes and captures a card charge.
func (v *VexoCard) ProcessCreditCard(ctx context.Context, req CreditCardChargeRequest) (CreditCardCharge, error) {
	token, err := v.tokens.Token(ctx, v.Provider().String())
	if err != nil {
		return CreditCardCharge{}, err
	}
	var charge CreditCardCharge
	if err := postJSON(ctx, v.client, v.baseURL+"/v1/charges", token, req, &charge); err != nil {
		return CreditCardCharge{}, err
	}
	return charge, nil
}

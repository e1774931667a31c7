package gateway

import (
	"context"
	"net/http"

	"github.com/brisapay/brisapay/internal/config"
	"github.com/brisapay/brisapay/internal/fault"
)

// Provider is the tagged set of supported external payment providers.
// Resolution from a configured name happens once at load, never per call.
type Provider int

const (
	ProviderUnknown Provider = iota
	ProviderAltaPag
	ProviderVexoCard
)

func (p Provider) String() string {
	switch p {
	case ProviderAltaPag:
		return "altapag"
	case ProviderVexoCard:
		return "vexocard"
	default:
		return "unknown"
	}
}

// ParseProvider maps a configured provider name to its variant.
func ParseProvider(name string) (Provider, error) {
	switch name {
	case "altapag":
		return ProviderAltaPag, nil
	case "vexocard":
		return ProviderVexoCard, nil
	default:
		return ProviderUnknown, fault.Newf(fault.Configuration, "unknown payment provider %q", name)
	}
}

// Router dispatches charge requests to the adapter configured for each
// payment type. The dispatch table is immutable after construction.
type Router struct {
	routes map[PaymentType]Adapter
}

// NewRouter builds a router over an explicit dispatch table. Used directly
// in tests; production wiring goes through BuildRouter.
func NewRouter(routes map[PaymentType]Adapter) *Router {
	return &Router{routes: routes}
}

// BuildRouter resolves the configured provider per payment type and
// constructs one adapter per provider, shared across the types it serves.
func BuildRouter(cfg config.Config, tokens *TokenSource) (*Router, error) {
	client := &http.Client{Timeout: cfg.GatewayTimeout}

	adapters := map[Provider]Adapter{}
	adapterFor := func(name string) (Adapter, error) {
		provider, err := ParseProvider(name)
		if err != nil {
			return nil, err
		}
		if a, ok := adapters[provider]; ok {
			return a, nil
		}
		pc, ok := cfg.Providers[name]
		if !ok || pc.BaseURL == "" {
			return nil, fault.Newf(fault.Configuration, "provider %s has no base url configured", name)
		}
		var a Adapter
		switch provider {
		case ProviderAltaPag:
			a = NewAltaPag(pc, client, tokens)
		case ProviderVexoCard:
			a = NewVexoCard(pc, client, tokens)
		}
		adapters[provider] = a
		return a, nil
	}

	routes := map[PaymentType]Adapter{}
	for paymentType, name := range map[PaymentType]string{
		PaymentPix:        cfg.PixProvider,
		PaymentBankSlip:   cfg.BankSlipProvider,
		PaymentCreditCard: cfg.CreditCardProvider,
	} {
		if name == "" {
			continue
		}
		a, err := adapterFor(name)
		if err != nil {
			return nil, err
		}
		routes[paymentType] = a
	}

	return NewRouter(routes), nil
}

// Resolve returns the provider configured for a payment type.
func (r *Router) Resolve(t PaymentType) (Provider, error) {
	a, ok := r.routes[t]
	if !ok {
		return ProviderUnknown, fault.Newf(fault.Configuration, "no provider configured for payment type %s", t)
	}
	return a.Provider(), nil
}

// ProcessPix dispatches a pix charge to the configured provider.
func (r *Router) ProcessPix(ctx context.Context, req PixChargeRequest) (PixCharge, error) {
	a, ok := r.routes[PaymentPix]
	if !ok {
		return PixCharge{}, fault.New(fault.Configuration, "no provider configured for payment type pix")
	}
	p, ok := a.(PixProcessor)
	if !ok {
		return PixCharge{}, fault.Newf(fault.NotSupported, "provider %s does not support pix", a.Provider())
	}
	return p.ProcessPix(ctx, req)
}

// ProcessBankSlip dispatches a bank-slip charge to the configured provider.
func (r *Router) ProcessBankSlip(ctx context.Context, req BankSlipChargeRequest) (BankSlipCharge, error) {
	a, ok := r.routes[PaymentBankSlip]
	if !ok {
		return BankSlipCharge{}, fault.New(fault.Configuration, "no provider configured for payment type bank_slip")
	}
	p, ok := a.(BankSlipProcessor)
	if !ok {
		return BankSlipCharge{}, fault.Newf(fault.NotSupported, "provider %s does not support bank slips", a.Provider())
	}
	return p.ProcessBankSlip(ctx, req)
}

// ProcessCreditCard dispatches a card charge to the configured provider.
func (r *Router) ProcessCreditCard(ctx context.Context, req CreditCardChargeRequest) (CreditCardCharge, error) {
	a, ok := r.routes[PaymentCreditCard]
	if !ok {
		return CreditCardCharge{}, fault.New(fault.Configuration, "no provider configured for payment type credit_card")
	}
	p, ok := a.(CreditCardProcessor)
	if !ok {
		return CreditCardCharge{}, fault.Newf(fault.NotSupported, "provider %s does not support credit cards", a.Provider())
	}
	return p.ProcessCreditCard(ctx, req)
}

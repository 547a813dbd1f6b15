package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/account"
	"github.com/stripe/stripe-go/v81/accountlink"
	"github.com/stripe/stripe-go/v81/checkout/session"
)

// Provider - исходящие вызовы платёжного провайдера.
// Входящие события разбирает service.PaymentEventService
type Provider interface {
	// CreateConnectAccount создаёт аккаунт артиста и возвращает его внешний id
	CreateConnectAccount(ctx context.Context, email string) (string, error)
	// OnboardingLink возвращает одноразовую ссылку на заполнение данных аккаунта
	OnboardingLink(ctx context.Context, accountID string) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
}

// LineItem - позиция сессии оплаты, сумма в центах
type LineItem struct {
	Name       string
	UnitAmount int64
}

type CheckoutRequest struct {
	OrderID       int64
	Currency      string
	CustomerEmail string
	Items         []LineItem
}

type Session struct {
	ID  string
	URL string
}

// Config - ключ API и адреса возврата пользователя
type Config struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
	ReturnURL  string
	RefreshURL string
}

// StripeProvider реализует Provider через клиентов stripe-go.
// Клиенты не трогают глобальный stripe.Key
type StripeProvider struct {
	cfg      Config
	accounts account.Client
	links    accountlink.Client
	sessions session.Client
}

// NewStripeProvider: backend nil - боевой API провайдера
func NewStripeProvider(cfg Config, backend stripe.Backend) *StripeProvider {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeProvider{
		cfg:      cfg,
		accounts: account.Client{B: backend, Key: cfg.SecretKey},
		links:    accountlink.Client{B: backend, Key: cfg.SecretKey},
		sessions: session.Client{B: backend, Key: cfg.SecretKey},
	}
}

func (p *StripeProvider) CreateConnectAccount(ctx context.Context, email string) (string, error) {
	const op = "payments.StripeProvider.CreateConnectAccount"

	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			Transfers: &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx

	acct, err := p.accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return acct.ID, nil
}

func (p *StripeProvider) OnboardingLink(ctx context.Context, accountID string) (string, error) {
	const op = "payments.StripeProvider.OnboardingLink"

	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
		RefreshURL: stripe.String(p.cfg.RefreshURL),
		ReturnURL:  stripe.String(p.cfg.ReturnURL),
	}
	params.Context = ctx

	link, err := p.links.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return link.URL, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	const op = "payments.StripeProvider.CreateCheckoutSession"

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				UnitAmount:  stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String(item.Name)},
			},
			Quantity: stripe.Int64(1),
		})
	}

	// order_id дублируется в платёж, оттуда он попадает в charge.refunded
	orderID := strconv.FormatInt(req.OrderID, 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		ClientReferenceID: stripe.String(orderID),
		SuccessURL:        stripe.String(p.cfg.SuccessURL),
		CancelURL:         stripe.String(p.cfg.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("order_id", orderID)
	params.PaymentIntentData.AddMetadata("order_id", orderID)
	params.Context = ctx

	sess, err := p.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

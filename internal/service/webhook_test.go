package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/linemk/fanbase/internal/domain/models"
	"github.com/linemk/fanbase/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

type webhookFixture struct {
	orders   *fakeOrderRepo
	sellers  *fakeSellerRepo
	balances *fakeBalanceRepo
	svc      service.PaymentEventService
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		orders: newFakeOrderRepo(),
		sellers: newFakeSellerRepo(&models.Seller{
			ID:               7,
			UserID:           70,
			ConnectAccountID: "acct_1",
			ConnectStatus:    models.ConnectPending,
		}),
		balances: newFakeBalanceRepo(),
	}
	f.orders.orders[5] = &models.Order{ID: 5, Status: models.OrderPending, PaymentSessionID: "cs_5"}
	f.svc = service.NewPaymentEventService(discardLogger(), f.orders, f.sellers, f.balances)
	return f
}

func event(typ, account, raw string) *stripe.Event {
	return &stripe.Event{
		ID:      "evt_test",
		Type:    stripe.EventType(typ),
		Account: account,
		Data:    &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func TestPaymentEventService_OrderLifecycle(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.HandleEvent(ctx, event("checkout.session.completed", "", `{"id":"cs_5","payment_status":"paid"}`)))
	assert.Equal(t, models.OrderPaid, f.orders.orders[5].Status)

	// повторная доставка того же события
	require.NoError(t, f.svc.HandleEvent(ctx, event("checkout.session.completed", "", `{"id":"cs_5","payment_status":"paid"}`)))
	assert.Equal(t, models.OrderPaid, f.orders.orders[5].Status)

	// paid -> failed недопустим, событие подтверждается без записи
	require.NoError(t, f.svc.HandleEvent(ctx, event("checkout.session.expired", "", `{"id":"cs_5","payment_status":"unpaid"}`)))
	assert.Equal(t, models.OrderPaid, f.orders.orders[5].Status)

	require.NoError(t, f.svc.HandleEvent(ctx, event("charge.refunded", "", `{"id":"ch_1","metadata":{"order_id":"5"}}`)))
	assert.Equal(t, models.OrderRefunded, f.orders.orders[5].Status)

	require.NoError(t, f.svc.HandleEvent(ctx, event("checkout.session.completed", "", `{"id":"cs_5","payment_status":"paid"}`)))
	assert.Equal(t, models.OrderRefunded, f.orders.orders[5].Status, "refunded is terminal")
}

func TestPaymentEventService_DelayedPaymentWaitsForOutcome(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.HandleEvent(ctx, event("checkout.session.completed", "", `{"id":"cs_5","payment_status":"unpaid"}`)))
	assert.Equal(t, models.OrderPending, f.orders.orders[5].Status, "unpaid session must not mark the order paid")

	require.NoError(t, f.svc.HandleEvent(ctx, event("checkout.session.async_payment_failed", "", `{"id":"cs_5","payment_status":"unpaid"}`)))
	assert.Equal(t, models.OrderFailed, f.orders.orders[5].Status)
}

func TestPaymentEventService_DelayedPaymentSucceeds(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.HandleEvent(ctx, event("checkout.session.completed", "", `{"id":"cs_5","payment_status":"unpaid"}`)))
	require.NoError(t, f.svc.HandleEvent(ctx, event("checkout.session.async_payment_succeeded", "", `{"id":"cs_5","payment_status":"paid"}`)))
	assert.Equal(t, models.OrderPaid, f.orders.orders[5].Status)
}

func TestPaymentEventService_NoPaymentRequired(t *testing.T) {
	f := newWebhookFixture()

	require.NoError(t, f.svc.HandleEvent(context.Background(), event("checkout.session.completed", "", `{"id":"cs_5","payment_status":"no_payment_required"}`)))
	assert.Equal(t, models.OrderPaid, f.orders.orders[5].Status)
}

func TestPaymentEventService_CheckoutFailed(t *testing.T) {
	f := newWebhookFixture()

	require.NoError(t, f.svc.HandleEvent(context.Background(), event("checkout.session.async_payment_failed", "", `{"id":"cs_5","payment_status":"unpaid"}`)))
	assert.Equal(t, models.OrderFailed, f.orders.orders[5].Status)
}

func TestPaymentEventService_ConcurrentStatusChangeIsAcked(t *testing.T) {
	f := newWebhookFixture()
	f.orders.conflict = true

	require.NoError(t, f.svc.HandleEvent(context.Background(), event("checkout.session.completed", "", `{"id":"cs_5","payment_status":"paid"}`)))
	assert.Equal(t, models.OrderPending, f.orders.orders[5].Status)
}

func TestPaymentEventService_UnknownReferencesAreAcked(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	assert.NoError(t, f.svc.HandleEvent(ctx, event("checkout.session.completed", "", `{"id":"cs_missing","payment_status":"paid"}`)))
	assert.NoError(t, f.svc.HandleEvent(ctx, event("charge.refunded", "", `{"id":"ch_1","metadata":{}}`)))
	assert.NoError(t, f.svc.HandleEvent(ctx, event("account.updated", "", `{"id":"acct_missing"}`)))
	assert.NoError(t, f.svc.HandleEvent(ctx, event("balance.available", "acct_missing", `{"available":[]}`)))
}

func TestPaymentEventService_AccountUpdated(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	raw := `{"id":"acct_1","charges_enabled":true,"payouts_enabled":false,"requirements":{"currently_due":["external_account"]}}`
	require.NoError(t, f.svc.HandleEvent(ctx, event("account.updated", "", raw)))
	seller := f.sellers.sellers[7]
	assert.Equal(t, models.ConnectPending, seller.ConnectStatus)
	assert.True(t, seller.ChargesEnabled)
	assert.False(t, seller.PayoutsEnabled)
	assert.Equal(t, []string{"external_account"}, seller.RequirementsDue)

	raw = `{"id":"acct_1","charges_enabled":true,"payouts_enabled":true,"requirements":{"currently_due":[]}}`
	require.NoError(t, f.svc.HandleEvent(ctx, event("account.updated", "", raw)))
	assert.Equal(t, models.ConnectConnected, seller.ConnectStatus)
	assert.Empty(t, seller.RequirementsDue)
}

func TestPaymentEventService_BalanceAvailable(t *testing.T) {
	f := newWebhookFixture()

	raw := `{"object":"balance","available":[{"amount":1200,"currency":"usd"},{"amount":50,"currency":"eur"}],"pending":[{"amount":300,"currency":"usd"}]}`
	require.NoError(t, f.svc.HandleEvent(context.Background(), event("balance.available", "acct_1", raw)))

	snap := f.balances.snapshots[7]
	require.NotNil(t, snap)
	assert.Equal(t, int64(1200), snap.Available)
	assert.Equal(t, int64(300), snap.Pending)
	assert.Equal(t, "usd", snap.Currency)
}

func TestPaymentEventService_Payouts(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	raw := `{"id":"po_1","amount":2500,"currency":"usd","status":"in_transit","arrival_date":1714521600,"created":1714435200}`
	require.NoError(t, f.svc.HandleEvent(ctx, event("payout.created", "acct_1", raw)))
	raw = `{"id":"po_1","amount":2500,"currency":"usd","status":"paid","arrival_date":1714521600,"created":1714435200}`
	require.NoError(t, f.svc.HandleEvent(ctx, event("payout.paid", "acct_1", raw)))

	require.Len(t, f.balances.payouts, 1)
	p := f.balances.payouts["po_1"]
	assert.Equal(t, int64(7), p.SellerID)
	assert.Equal(t, "paid", p.Status)
	assert.Equal(t, time.Unix(1714521600, 0).UTC(), p.ArrivalDate)
}

func TestPaymentEventService_Errors(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	err := f.svc.HandleEvent(ctx, event("customer.created", "", `{"id":"cus_1"}`))
	assert.ErrorIs(t, err, service.ErrUnhandledEvent)

	err = f.svc.HandleEvent(ctx, event("checkout.session.completed", "", `{"id":`))
	assert.ErrorIs(t, err, service.ErrMalformedEvent)

	err = f.svc.HandleEvent(ctx, event("checkout.session.completed", "", `{}`))
	assert.ErrorIs(t, err, service.ErrMalformedEvent)

	err = f.svc.HandleEvent(ctx, &stripe.Event{Type: "checkout.session.completed"})
	assert.ErrorIs(t, err, service.ErrMalformedEvent)
}

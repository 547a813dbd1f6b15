package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/linemk/fanbase/internal/domain/models"
	"github.com/linemk/fanbase/internal/payments"
	"github.com/linemk/fanbase/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errStoreDown = errors.New("store unavailable")

type fakeUserRepo struct {
	users map[string]*models.User // ключ - email
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) add(u *models.User) {
	f.users[u.Email] = u
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, storage.ErrUserExists
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error) {
	res := make(map[int64]*models.User)
	for _, id := range ids {
		if u, err := f.GetUserByID(ctx, id); err == nil {
			res[id] = u
		}
	}
	return res, nil
}

type fakeSellerRepo struct {
	mu      sync.Mutex
	sellers map[int64]*models.Seller // ключ - id артиста
	err     error
}

var _ storage.SellerStorage = (*fakeSellerRepo)(nil)

func newFakeSellerRepo(sellers ...*models.Seller) *fakeSellerRepo {
	f := &fakeSellerRepo{sellers: make(map[int64]*models.Seller)}
	for _, s := range sellers {
		f.sellers[s.ID] = s
	}
	return f
}

func (f *fakeSellerRepo) GetSellerByUserID(ctx context.Context, userID int64) (*models.Seller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sellers {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, storage.ErrSellerNotFound
}

func (f *fakeSellerRepo) GetSellerByID(ctx context.Context, id int64) (*models.Seller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sellers[id]
	if !ok {
		return nil, storage.ErrSellerNotFound
	}
	return s, nil
}

func (f *fakeSellerRepo) GetSellerByConnectAccountID(ctx context.Context, accountID string) (*models.Seller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sellers {
		if s.ConnectAccountID == accountID {
			return s, nil
		}
	}
	return nil, storage.ErrSellerNotFound
}

func (f *fakeSellerRepo) GetSellersByIDs(ctx context.Context, ids []int64) (map[int64]*models.Seller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	res := make(map[int64]*models.Seller)
	for _, id := range ids {
		if s, ok := f.sellers[id]; ok {
			res[id] = s
		}
	}
	return res, nil
}

func (f *fakeSellerRepo) CreateSeller(ctx context.Context, seller *models.Seller) (*models.Seller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sellers {
		if s.Slug == seller.Slug {
			return nil, storage.ErrSlugTaken
		}
		if s.UserID == seller.UserID {
			return nil, storage.ErrSellerExists
		}
	}
	seller.ID = int64(len(f.sellers) + 1)
	seller.ConnectStatus = models.ConnectNotConnected
	f.sellers[seller.ID] = seller
	return seller, nil
}

func (f *fakeSellerRepo) SetConnectAccount(ctx context.Context, sellerID int64, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sellers[sellerID]
	if !ok || s.ConnectAccountID != "" {
		return storage.ErrAccountLinked
	}
	s.ConnectAccountID = accountID
	s.ConnectStatus = models.ConnectPending
	return nil
}

func (f *fakeSellerRepo) UpdateConnect(ctx context.Context, upd models.ConnectUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sellers {
		if s.ConnectAccountID == upd.AccountID {
			s.ConnectStatus = upd.Status
			s.ChargesEnabled = upd.ChargesEnabled
			s.PayoutsEnabled = upd.PayoutsEnabled
			s.RequirementsDue = upd.RequirementsDue
			return nil
		}
	}
	return storage.ErrSellerNotFound
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products []*models.Product
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func (f *fakeProductRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product.ID = int64(len(f.products) + 1)
	f.products = append(f.products, product)
	return product, nil
}

func (f *fakeProductRepo) GetProductsBySellerID(ctx context.Context, sellerID int64) ([]*models.Product, error) {
	return f.GetProductsBySellerIDs(ctx, []int64{sellerID})
}

func (f *fakeProductRepo) GetProductsBySellerIDs(ctx context.Context, sellerIDs []int64) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[int64]bool, len(sellerIDs))
	for _, id := range sellerIDs {
		want[id] = true
	}
	res := []*models.Product{}
	for _, p := range f.products {
		if want[p.SellerID] {
			res = append(res, p)
		}
	}
	return res, nil
}

func (f *fakeProductRepo) GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make(map[int64]*models.Product)
	for _, id := range ids {
		for _, p := range f.products {
			if p.ID == id {
				res[id] = p
			}
		}
	}
	return res, nil
}

type fakeOrderRepo struct {
	orders    map[int64]*models.Order // ключ - id заказа
	lineItems []*models.OrderLineItem
	// conflict эмулирует смену статуса другим запросом
	conflict  bool
	createErr error
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*models.Order)}
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *models.Order, items []*models.OrderLineItem) (*models.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	order.ID = int64(len(f.orders) + 1)
	order.CreatedAt = time.Now()
	f.orders[order.ID] = order
	for _, item := range items {
		item.ID = int64(len(f.lineItems) + 1)
		item.OrderID = order.ID
		item.CreatedAt = order.CreatedAt
		f.lineItems = append(f.lineItems, item)
	}
	return order, nil
}

func (f *fakeOrderRepo) SetPaymentSession(ctx context.Context, orderID int64, sessionID string) error {
	o, ok := f.orders[orderID]
	if !ok || o.Status != models.OrderPending {
		return storage.ErrStatusConflict
	}
	o.PaymentSessionID = sessionID
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.PaymentSessionID == sessionID {
			return o, nil
		}
	}
	return nil, storage.ErrOrderNotFound
}

func (f *fakeOrderRepo) GetOrdersByIDs(ctx context.Context, ids []int64) (map[int64]*models.Order, error) {
	res := make(map[int64]*models.Order)
	for _, id := range ids {
		if o, ok := f.orders[id]; ok {
			res[id] = o
		}
	}
	return res, nil
}

func (f *fakeOrderRepo) GetLineItemsByProductIDs(ctx context.Context, productIDs []int64) ([]*models.OrderLineItem, error) {
	want := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		want[id] = true
	}
	res := []*models.OrderLineItem{}
	for _, li := range f.lineItems {
		if want[li.ProductID] {
			res = append(res, li)
		}
	}
	return res, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, id int64, from, to models.OrderStatus) error {
	o, ok := f.orders[id]
	if !ok || f.conflict || o.Status != from {
		return storage.ErrStatusConflict
	}
	o.Status = to
	return nil
}

type fakeFollowRepo struct {
	follows map[int64][]int64 // viewer -> sellers
	sellers *fakeSellerRepo
	err     error
}

var _ storage.FollowStorage = (*fakeFollowRepo)(nil)

func newFakeFollowRepo(sellers *fakeSellerRepo) *fakeFollowRepo {
	return &fakeFollowRepo{follows: make(map[int64][]int64), sellers: sellers}
}

func (f *fakeFollowRepo) Follow(ctx context.Context, viewerID, sellerID int64) error {
	if _, err := f.sellers.GetSellerByID(ctx, sellerID); err != nil {
		return err
	}
	for _, id := range f.follows[viewerID] {
		if id == sellerID {
			return nil
		}
	}
	f.follows[viewerID] = append(f.follows[viewerID], sellerID)
	return nil
}

func (f *fakeFollowRepo) Unfollow(ctx context.Context, viewerID, sellerID int64) error {
	ids := f.follows[viewerID]
	for i, id := range ids {
		if id == sellerID {
			f.follows[viewerID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeFollowRepo) GetFollowsByViewerID(ctx context.Context, viewerID int64) ([]*models.Follow, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := []*models.Follow{}
	for _, id := range f.follows[viewerID] {
		res = append(res, &models.Follow{ViewerID: viewerID, SellerID: id})
	}
	return res, nil
}

type fakeBalanceRepo struct {
	mu        sync.Mutex
	snapshots map[int64]*models.BalanceSnapshot
	payouts   map[string]*models.Payout
}

var _ storage.BalanceStorage = (*fakeBalanceRepo)(nil)

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{
		snapshots: make(map[int64]*models.BalanceSnapshot),
		payouts:   make(map[string]*models.Payout),
	}
}

func (f *fakeBalanceRepo) GetSnapshot(ctx context.Context, sellerID int64) (*models.BalanceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.snapshots[sellerID]
	if !ok {
		return nil, storage.ErrSnapshotNotFound
	}
	return s, nil
}

func (f *fakeBalanceRepo) UpsertSnapshot(ctx context.Context, snapshot *models.BalanceSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[snapshot.SellerID] = snapshot
	return nil
}

func (f *fakeBalanceRepo) GetLatestPayout(ctx context.Context, sellerID int64) (*models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Payout
	for _, p := range f.payouts {
		if p.SellerID != sellerID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, storage.ErrPayoutNotFound
	}
	return latest, nil
}

func (f *fakeBalanceRepo) UpsertPayout(ctx context.Context, payout *models.Payout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payouts[payout.ExternalID] = payout
	return nil
}

// fakeProvider запоминает вызовы платёжного провайдера
type fakeProvider struct {
	accounts  []string // email созданных аккаунтов
	links     []string // id аккаунтов, для которых выданы ссылки
	checkouts []payments.CheckoutRequest
	err       error
}

var _ payments.Provider = (*fakeProvider)(nil)

func (f *fakeProvider) CreateConnectAccount(ctx context.Context, email string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.accounts = append(f.accounts, email)
	return fmt.Sprintf("acct_%d", len(f.accounts)), nil
}

func (f *fakeProvider) OnboardingLink(ctx context.Context, accountID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.links = append(f.links, accountID)
	return "https://connect.example/" + accountID, nil
}

func (f *fakeProvider) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.checkouts = append(f.checkouts, req)
	id := fmt.Sprintf("cs_%d", req.OrderID)
	return &payments.Session{ID: id, URL: "https://checkout.example/" + id}, nil
}

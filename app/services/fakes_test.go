package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
)

// passTransactor runs the unit of work on the caller's context. Service
// tests exercise business rules, not transaction plumbing.
type passTransactor struct{}

func (passTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users    map[string]*models.User
	wishlist map[string][]models.Product
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    map[string]*models.User{},
		wishlist: map[string][]models.Product{},
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetPaginated(_ context.Context, limit, offset int) ([]models.User, int64, error) {
	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, userID, role string) error {
	if user, ok := r.users[userID]; ok {
		user.Role = role
	}
	return nil
}

func (r *fakeUserRepo) AddToWishlist(_ context.Context, userID string, product *models.Product) error {
	r.wishlist[userID] = append(r.wishlist[userID], *product)
	return nil
}

func (r *fakeUserRepo) RemoveFromWishlist(_ context.Context, userID, productID string) error {
	kept := r.wishlist[userID][:0]
	for _, p := range r.wishlist[userID] {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	r.wishlist[userID] = kept
	return nil
}

func (r *fakeUserRepo) GetWishlist(_ context.Context, userID string) ([]models.Product, error) {
	return r.wishlist[userID], nil
}

type fakeAddressRepo struct {
	addresses map[string]*models.Address
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addresses: map[string]*models.Address{}}
}

func (r *fakeAddressRepo) Create(_ context.Context, address *models.Address) error {
	if address.ID == "" {
		address.ID = uuid.NewString()
	}
	r.addresses[address.ID] = address
	return nil
}

func (r *fakeAddressRepo) Update(_ context.Context, address *models.Address) error {
	r.addresses[address.ID] = address
	return nil
}

func (r *fakeAddressRepo) Delete(_ context.Context, id string) error {
	delete(r.addresses, id)
	return nil
}

func (r *fakeAddressRepo) FindByID(_ context.Context, id string) (*models.Address, error) {
	return r.addresses[id], nil
}

func (r *fakeAddressRepo) FindByUserID(_ context.Context, userID string) ([]models.Address, error) {
	var out []models.Address
	for _, address := range r.addresses {
		if address.UserID == userID {
			out = append(out, *address)
		}
	}
	return out, nil
}

func (r *fakeAddressRepo) CountByUserID(_ context.Context, userID string) (int64, error) {
	addresses, _ := r.FindByUserID(nil, userID)
	return int64(len(addresses)), nil
}

func (r *fakeAddressRepo) SetDefault(_ context.Context, userID, addressID string) error {
	for _, address := range r.addresses {
		if address.UserID == userID {
			address.IsDefault = address.ID == addressID
		}
	}
	return nil
}

type fakeProductRepo struct {
	products map[string]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*models.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	product.ApplyDiscount()
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *models.Product) error {
	product.ApplyDiscount()
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*models.Product, error) {
	stored, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	product := *stored
	return &product, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	for _, stored := range r.products {
		if stored.Slug == slug {
			product := *stored
			return &product, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetPaginated(_ context.Context, filter repositories.ProductFilter) ([]models.Product, int64, error) {
	var out []models.Product
	for _, stored := range r.products {
		if filter.OnlyActive && !stored.IsActive {
			continue
		}
		out = append(out, *stored)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) ExistsBySku(_ context.Context, sku, excludeID string) (bool, error) {
	for _, stored := range r.products {
		if stored.Sku == sku && stored.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProductRepo) ExistsBySlug(_ context.Context, slug, excludeID string) (bool, error) {
	for _, stored := range r.products {
		if stored.Slug == slug && stored.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProductRepo) CountByCategoryID(_ context.Context, categoryID string) (int64, error) {
	var count int64
	for _, stored := range r.products {
		if stored.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *fakeProductRepo) CountByBrandID(_ context.Context, brandID string) (int64, error) {
	var count int64
	for _, stored := range r.products {
		if stored.BrandID == brandID {
			count++
		}
	}
	return count, nil
}

func (r *fakeProductRepo) ReserveStock(_ context.Context, productID string, qty int) error {
	stored, ok := r.products[productID]
	if !ok || stored.Stock < qty {
		return repositories.ErrStockConflict
	}
	stored.Stock -= qty
	return nil
}

func (r *fakeProductRepo) RestoreStock(_ context.Context, productID string, qty int) error {
	if stored, ok := r.products[productID]; ok {
		stored.Stock += qty
	}
	return nil
}

func (r *fakeProductRepo) stockOf(id string) int {
	return r.products[id].Stock
}

// cartState backs both cart fakes so service-level flows see one store.
type cartState struct {
	carts map[string]*models.Cart
	items []*models.CartItem
}

func newCartState() *cartState {
	return &cartState{carts: map[string]*models.Cart{}}
}

type fakeCartRepo struct {
	state    *cartState
	products *fakeProductRepo
}

func (r *fakeCartRepo) GetByUserID(_ context.Context, userID string) (*models.Cart, error) {
	for _, stored := range r.state.carts {
		if stored.UserID != userID {
			continue
		}
		cart := *stored
		cart.CartItems = nil
		for _, item := range r.state.items {
			if item.CartID != cart.ID {
				continue
			}
			line := *item
			if product, ok := r.products.products[line.ProductID]; ok {
				line.Product = *product
			}
			cart.CartItems = append(cart.CartItems, line)
		}
		return &cart, nil
	}
	return nil, nil
}

func (r *fakeCartRepo) GetOrCreateByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	cart, _ := r.GetByUserID(ctx, userID)
	if cart != nil {
		return cart, nil
	}
	cart = &models.Cart{ID: uuid.NewString(), UserID: userID}
	r.state.carts[cart.ID] = cart
	return cart, nil
}

func (r *fakeCartRepo) Delete(_ context.Context, cartID string) error {
	delete(r.state.carts, cartID)
	kept := r.state.items[:0]
	for _, item := range r.state.items {
		if item.CartID != cartID {
			kept = append(kept, item)
		}
	}
	r.state.items = kept
	return nil
}

type fakeCartItemRepo struct {
	state *cartState
}

func (r *fakeCartItemRepo) Get(_ context.Context, cartID, productID string) (*models.CartItem, error) {
	for _, item := range r.state.items {
		if item.CartID == cartID && item.ProductID == productID {
			line := *item
			return &line, nil
		}
	}
	return nil, nil
}

func (r *fakeCartItemRepo) Add(_ context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	stored := *item
	r.state.items = append(r.state.items, &stored)
	return nil
}

func (r *fakeCartItemRepo) Update(_ context.Context, item *models.CartItem) error {
	for _, stored := range r.state.items {
		if stored.CartID == item.CartID && stored.ProductID == item.ProductID {
			stored.Qty = item.Qty
			return nil
		}
	}
	return nil
}

func (r *fakeCartItemRepo) Delete(_ context.Context, cartID, productID string) error {
	kept := r.state.items[:0]
	for _, item := range r.state.items {
		if item.CartID != cartID || item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	r.state.items = kept
	return nil
}

func (r *fakeCartItemRepo) CountByCartID(_ context.Context, cartID string) (int64, error) {
	var count int64
	for _, item := range r.state.items {
		if item.CartID == cartID {
			count++
		}
	}
	return count, nil
}

type fakeOrderRepo struct {
	orders map[string]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*models.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *models.Order) error {
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*models.Order, error) {
	stored, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	order := *stored
	return &order, nil
}

func (r *fakeOrderRepo) GetPaginated(_ context.Context, filter repositories.OrderFilter) ([]models.Order, int64, error) {
	var out []models.Order
	for _, stored := range r.orders {
		if filter.UserID != "" && stored.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && stored.Status != filter.Status {
			continue
		}
		out = append(out, *stored)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) UpdateGuarded(_ context.Context, orderID string, expected models.OrderStatus, updates map[string]interface{}) (int64, error) {
	stored, ok := r.orders[orderID]
	if !ok || stored.Status != expected {
		return 0, nil
	}
	applyOrderUpdates(stored, updates)
	return 1, nil
}

func (r *fakeOrderRepo) FindStalePendingBankTransfers(_ context.Context, olderThan time.Time) ([]models.Order, error) {
	var out []models.Order
	for _, stored := range r.orders {
		if stored.Status == models.OrderStatusPending &&
			stored.PaymentMethod == models.PaymentMethodBankTransfer &&
			stored.CreatedAt.Before(olderThan) {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ExistsByUserAndCouponCode(_ context.Context, userID, couponCode string) (bool, error) {
	for _, stored := range r.orders {
		if stored.UserID == userID && stored.CouponCode == couponCode &&
			stored.Status != models.OrderStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) CountItemsByProductID(_ context.Context, productID string) (int64, error) {
	var count int64
	for _, stored := range r.orders {
		for _, item := range stored.Items {
			if item.ProductID == productID {
				count++
			}
		}
	}
	return count, nil
}

func applyOrderUpdates(order *models.Order, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "status":
			order.Status = value.(models.OrderStatus)
		case "stock_reserved":
			order.StockReserved = value.(bool)
		case "payment_proof":
			order.PaymentProof = value.(string)
		case "payment_paid":
			order.PaymentPaid = value.(bool)
		case "paid_at":
			order.PaidAt = asTimePtr(value)
		case "delivered":
			order.Delivered = value.(bool)
		case "delivered_at":
			order.DeliveredAt = asTimePtr(value)
		case "refunded":
			order.Refunded = value.(bool)
		}
	}
}

func asTimePtr(value interface{}) *time.Time {
	if value == nil {
		return nil
	}
	if t, ok := value.(time.Time); ok {
		return &t
	}
	return value.(*time.Time)
}

type fakeCouponRepo struct {
	coupons map[string]*models.Coupon
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{coupons: map[string]*models.Coupon{}}
}

func (r *fakeCouponRepo) Create(_ context.Context, coupon *models.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = uuid.NewString()
	}
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	r.coupons[coupon.ID] = coupon
	return nil
}

func (r *fakeCouponRepo) Update(_ context.Context, coupon *models.Coupon) error {
	r.coupons[coupon.ID] = coupon
	return nil
}

func (r *fakeCouponRepo) Delete(_ context.Context, id string) error {
	delete(r.coupons, id)
	return nil
}

func (r *fakeCouponRepo) GetByID(_ context.Context, id string) (*models.Coupon, error) {
	return r.coupons[id], nil
}

func (r *fakeCouponRepo) FindActiveByCode(_ context.Context, code string) (*models.Coupon, error) {
	normalized := models.NormalizeCouponCode(code)
	for _, coupon := range r.coupons {
		if strings.EqualFold(coupon.Code, normalized) && coupon.IsActive {
			return coupon, nil
		}
	}
	return nil, nil
}

func (r *fakeCouponRepo) GetPaginated(_ context.Context, limit, offset int) ([]models.Coupon, int64, error) {
	var out []models.Coupon
	for _, coupon := range r.coupons {
		out = append(out, *coupon)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCouponRepo) ConsumeUsage(_ context.Context, couponID string, usageLimit int) error {
	coupon, ok := r.coupons[couponID]
	if !ok {
		return repositories.ErrCouponExhausted
	}
	if usageLimit > 0 && coupon.UsedCount >= usageLimit {
		return repositories.ErrCouponExhausted
	}
	coupon.UsedCount++
	return nil
}

func (r *fakeCouponRepo) ReleaseUsage(_ context.Context, couponID string) error {
	if coupon, ok := r.coupons[couponID]; ok && coupon.UsedCount > 0 {
		coupon.UsedCount--
	}
	return nil
}

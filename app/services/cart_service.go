package services

import (
	"context"
	"fmt"

	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartSummary is what cart endpoints return: the cart (nil once it has
// been emptied), its recomputed total and whether any quantity had to be
// adjusted against live stock.
type CartSummary struct {
	Cart       *models.Cart    `json:"cart"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Adjusted   bool            `json:"adjusted"`
	Message    string          `json:"message,omitempty"`
}

type CartService struct {
	cartRepo     repositories.CartRepositoryImpl
	cartItemRepo repositories.CartItemRepositoryImpl
	productRepo  repositories.ProductRepositoryImpl
}

func NewCartService(
	cartRepo repositories.CartRepositoryImpl,
	cartItemRepo repositories.CartItemRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
) *CartService {
	return &CartService{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// GetUserCart loads the cart and clamps every line down to the live
// stock. Clamps are persisted, so the stored cart never promises more
// than the shop can sell at read time.
func (s *CartService) GetUserCart(ctx context.Context, userID string) (*CartSummary, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load cart: %w", err))
	}
	if cart == nil {
		return &CartSummary{TotalPrice: decimal.Zero}, nil
	}

	adjusted, err := s.clampToStock(ctx, cart)
	if err != nil {
		return nil, err
	}

	if len(cart.CartItems) == 0 {
		if err := s.cartRepo.Delete(ctx, cart.ID); err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to delete empty cart: %w", err))
		}
		summary := &CartSummary{TotalPrice: decimal.Zero, Adjusted: adjusted}
		if adjusted {
			summary.Message = "สินค้าในตะกร้าหมดสต็อกแล้ว ตะกร้าถูกล้าง"
		}
		return summary, nil
	}

	summary := s.summarize(cart)
	summary.Adjusted = adjusted
	if adjusted {
		summary.Message = "จำนวนสินค้าบางรายการถูกปรับตามสต็อกคงเหลือ"
	}
	return summary, nil
}

// AddItem merges the requested quantity into any existing line, adding
// at most what live stock allows. Nothing addable is a hard failure;
// a partial add succeeds with a message.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (*CartSummary, error) {
	if qty < 1 {
		return nil, apperrors.Validation("จำนวนสินค้าต้องมากกว่า 0")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load product: %w", err))
	}
	if product == nil {
		return nil, apperrors.NotFound("ไม่พบสินค้า")
	}

	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to get or create cart: %w", err))
	}

	existing, err := s.cartItemRepo.Get(ctx, cart.ID, productID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to check existing cart item: %w", err))
	}

	existingQty := 0
	if existing != nil {
		existingQty = existing.Qty
	}

	addable := product.Stock - existingQty
	if addable <= 0 {
		return nil, apperrors.BusinessRule(fmt.Sprintf("สินค้า '%s' ในสต็อกไม่เพียงพอ", product.Name))
	}

	added := qty
	if added > addable {
		added = addable
	}

	if existing != nil {
		existing.Qty += added
		if err := s.cartItemRepo.Update(ctx, existing); err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to update cart item: %w", err))
		}
	} else {
		item := &models.CartItem{CartID: cart.ID, ProductID: productID, Qty: added}
		if err := s.cartItemRepo.Add(ctx, item); err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to add cart item: %w", err))
		}
	}

	summary, err := s.reload(ctx, userID)
	if err != nil {
		return nil, err
	}
	if added < qty {
		summary.Adjusted = true
		summary.Message = fmt.Sprintf("เพิ่มสินค้าได้เพียง %d ชิ้น เนื่องจากสต็อกคงเหลือไม่พอ", added)
	}
	return summary, nil
}

// UpdateItem sets a line's quantity, silently capping at live stock.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, qty int) (*CartSummary, error) {
	if qty < 1 {
		return nil, apperrors.Validation("จำนวนสินค้าต้องมากกว่า 0")
	}

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load cart: %w", err))
	}
	if cart == nil {
		return nil, apperrors.NotFound("ไม่พบตะกร้าสินค้า")
	}

	item, err := s.cartItemRepo.Get(ctx, cart.ID, productID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load cart item: %w", err))
	}
	if item == nil {
		return nil, apperrors.NotFound("ไม่พบสินค้าในตะกร้า")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load product: %w", err))
	}
	if product == nil {
		return nil, apperrors.NotFound("ไม่พบสินค้า")
	}

	capped := false
	target := qty
	if target > product.Stock {
		target = product.Stock
		capped = true
	}

	if target <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	item.Qty = target
	if err := s.cartItemRepo.Update(ctx, item); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update cart item: %w", err))
	}

	summary, err := s.reload(ctx, userID)
	if err != nil {
		return nil, err
	}
	if capped {
		summary.Adjusted = true
		summary.Message = fmt.Sprintf("จำนวนสินค้าถูกปรับเป็น %d ชิ้นตามสต็อกคงเหลือ", target)
	}
	return summary, nil
}

// RemoveItem drops a line; when the last line goes, the cart row goes
// with it.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*CartSummary, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load cart: %w", err))
	}
	if cart == nil {
		return nil, apperrors.NotFound("ไม่พบตะกร้าสินค้า")
	}

	item, err := s.cartItemRepo.Get(ctx, cart.ID, productID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load cart item: %w", err))
	}
	if item == nil {
		return nil, apperrors.NotFound("ไม่พบสินค้าในตะกร้า")
	}

	if err := s.cartItemRepo.Delete(ctx, cart.ID, productID); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to remove cart item: %w", err))
	}

	count, err := s.cartItemRepo.CountByCartID(ctx, cart.ID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to count cart items: %w", err))
	}
	if count == 0 {
		if err := s.cartRepo.Delete(ctx, cart.ID); err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to delete empty cart: %w", err))
		}
		return &CartSummary{TotalPrice: decimal.Zero}, nil
	}

	return s.reload(ctx, userID)
}

func (s *CartService) reload(ctx context.Context, userID string) (*CartSummary, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to reload cart: %w", err))
	}
	if cart == nil {
		return &CartSummary{TotalPrice: decimal.Zero}, nil
	}
	return s.summarize(cart), nil
}

// clampToStock walks the lines, dropping orphans and shrinking any
// quantity above the live stock. Returns whether anything changed.
func (s *CartService) clampToStock(ctx context.Context, cart *models.Cart) (bool, error) {
	adjusted := false
	kept := cart.CartItems[:0]

	for i := range cart.CartItems {
		item := cart.CartItems[i]

		if item.Product.ID == "" {
			// Product was removed from the catalog; the line is dead.
			if err := s.cartItemRepo.Delete(ctx, cart.ID, item.ProductID); err != nil {
				return adjusted, apperrors.Internal(fmt.Errorf("failed to drop orphaned cart item: %w", err))
			}
			adjusted = true
			continue
		}

		if item.Qty > item.Product.Stock {
			adjusted = true
			if item.Product.Stock <= 0 {
				if err := s.cartItemRepo.Delete(ctx, cart.ID, item.ProductID); err != nil {
					return adjusted, apperrors.Internal(fmt.Errorf("failed to drop out-of-stock cart item: %w", err))
				}
				continue
			}
			item.Qty = item.Product.Stock
			if err := s.cartItemRepo.Update(ctx, &item); err != nil {
				return adjusted, apperrors.Internal(fmt.Errorf("failed to clamp cart item: %w", err))
			}
			zap.L().Debug("clamped cart quantity to stock",
				zap.String("cart_id", cart.ID),
				zap.String("product_id", item.ProductID),
				zap.Int("qty", item.Qty))
		}

		kept = append(kept, item)
	}

	cart.CartItems = kept
	return adjusted, nil
}

func (s *CartService) summarize(cart *models.Cart) *CartSummary {
	total := decimal.Zero
	for i := range cart.CartItems {
		item := &cart.CartItems[i]
		if item.Product.ID == "" {
			continue
		}
		line := item.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Qty)))
		total = total.Add(line)
	}
	return &CartSummary{Cart: cart, TotalPrice: total.Round(2)}
}

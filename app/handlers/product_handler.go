package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

type ProductHandler struct {
	render       *render.Render
	productRepo  repositories.ProductRepositoryImpl
	categoryRepo repositories.CategoryRepository
	brandRepo    repositories.BrandRepository
	orderRepo    repositories.OrderRepository
	validator    *validator.Validate
}

func NewProductHandler(
	rnd *render.Render,
	productRepo repositories.ProductRepositoryImpl,
	categoryRepo repositories.CategoryRepository,
	brandRepo repositories.BrandRepository,
	orderRepo repositories.OrderRepository,
	validate *validator.Validate,
) *ProductHandler {
	return &ProductHandler{
		render:       rnd,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		orderRepo:    orderRepo,
		validator:    validate,
	}
}

type ProductForm struct {
	Sku            string          `json:"sku" validate:"required,max=100"`
	Name           string          `json:"name" validate:"required,max=255"`
	Slug           string          `json:"slug" validate:"required,max=255"`
	Description    string          `json:"description"`
	Image          string          `json:"image"`
	CategoryID     string          `json:"category_id" validate:"required"`
	BrandID        string          `json:"brand_id" validate:"required"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Stock          int             `json:"stock" validate:"min=0"`
	IsActive       *bool           `json:"is_active"`
}

// List is the public storefront listing with keyword, category, brand
// and price-range filters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	query := r.URL.Query()

	filter := repositories.ProductFilter{
		Keyword:      query.Get("keyword"),
		CategorySlug: query.Get("category"),
		BrandSlug:    query.Get("brand"),
		OnlyActive:   true,
		Limit:        limit,
		Offset:       offset,
	}
	if raw := query.Get("min_price"); raw != "" {
		if min, err := decimal.NewFromString(raw); err == nil {
			filter.MinPrice = &min
		}
	}
	if raw := query.Get("max_price"); raw != "" {
		if max, err := decimal.NewFromString(raw); err == nil {
			filter.MaxPrice = &max
		}
	}

	products, total, err := h.productRepo.GetPaginated(r.Context(), filter)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to list products: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, pagedResponse{Data: products, Total: total})
}

func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	product, err := h.productRepo.GetBySlug(r.Context(), slug)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to load product: %w", err)))
		return
	}
	if product == nil {
		respondError(h.render, w, apperrors.NotFound("ไม่พบสินค้า"))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("ข้อมูลสินค้าไม่ถูกต้อง กรุณาตรวจสอบอีกครั้ง"))
		return
	}
	if form.OriginalPrice.IsNegative() || form.DiscountAmount.IsNegative() {
		respondError(h.render, w, apperrors.Validation("ราคาสินค้าต้องไม่ติดลบ"))
		return
	}

	if err := h.checkUniqueness(r, form, ""); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.checkReferences(r, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	product := &models.Product{
		Sku:            form.Sku,
		Name:           form.Name,
		Slug:           form.Slug,
		Description:    form.Description,
		Image:          form.Image,
		CategoryID:     form.CategoryID,
		BrandID:        form.BrandID,
		OriginalPrice:  form.OriginalPrice,
		DiscountAmount: form.DiscountAmount,
		Stock:          form.Stock,
		IsActive:       true,
	}
	if form.IsActive != nil {
		product.IsActive = *form.IsActive
	}

	if err := h.productRepo.Create(r.Context(), product); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to create product: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := h.productRepo.GetByID(r.Context(), id)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to load product: %w", err)))
		return
	}
	if product == nil {
		respondError(h.render, w, apperrors.NotFound("ไม่พบสินค้า"))
		return
	}

	var form ProductForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("ข้อมูลสินค้าไม่ถูกต้อง กรุณาตรวจสอบอีกครั้ง"))
		return
	}
	if form.OriginalPrice.IsNegative() || form.DiscountAmount.IsNegative() {
		respondError(h.render, w, apperrors.Validation("ราคาสินค้าต้องไม่ติดลบ"))
		return
	}

	if err := h.checkUniqueness(r, form, product.ID); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.checkReferences(r, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	product.Sku = form.Sku
	product.Name = form.Name
	product.Slug = form.Slug
	product.Description = form.Description
	product.Image = form.Image
	product.CategoryID = form.CategoryID
	product.BrandID = form.BrandID
	product.OriginalPrice = form.OriginalPrice
	product.DiscountAmount = form.DiscountAmount
	product.Stock = form.Stock
	if form.IsActive != nil {
		product.IsActive = *form.IsActive
	}

	if err := h.productRepo.Update(r.Context(), product); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to update product: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, product)
}

// Delete refuses while order lines still reference the product; order
// snapshots must keep a row to point at.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	referenced, err := h.orderRepo.CountItemsByProductID(r.Context(), id)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to check order references: %w", err)))
		return
	}
	if referenced > 0 {
		respondError(h.render, w, apperrors.BusinessRule("ไม่สามารถลบสินค้าได้ เนื่องจากมีคำสั่งซื้ออ้างอิงอยู่"))
		return
	}

	if err := h.productRepo.Delete(r.Context(), id); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to delete product: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "ลบสินค้าเรียบร้อยแล้ว"})
}

func (h *ProductHandler) checkUniqueness(r *http.Request, form ProductForm, excludeID string) error {
	skuTaken, err := h.productRepo.ExistsBySku(r.Context(), form.Sku, excludeID)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to check sku: %w", err))
	}
	if skuTaken {
		return apperrors.BusinessRule("รหัสสินค้า (SKU) นี้ถูกใช้งานแล้ว")
	}

	slugTaken, err := h.productRepo.ExistsBySlug(r.Context(), form.Slug, excludeID)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to check slug: %w", err))
	}
	if slugTaken {
		return apperrors.BusinessRule("Slug นี้ถูกใช้งานแล้ว")
	}
	return nil
}

func (h *ProductHandler) checkReferences(r *http.Request, form ProductForm) error {
	category, err := h.categoryRepo.GetByID(r.Context(), form.CategoryID)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to load category: %w", err))
	}
	if category == nil {
		return apperrors.NotFound("ไม่พบหมวดหมู่สินค้า")
	}

	brand, err := h.brandRepo.GetByID(r.Context(), form.BrandID)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to load brand: %w", err))
	}
	if brand == nil {
		return apperrors.NotFound("ไม่พบแบรนด์สินค้า")
	}
	return nil
}

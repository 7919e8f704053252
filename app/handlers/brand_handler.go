package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
	"github.com/unrolled/render"
)

type BrandHandler struct {
	render      *render.Render
	brandRepo   repositories.BrandRepository
	productRepo repositories.ProductRepositoryImpl
	validator   *validator.Validate
}

func NewBrandHandler(rnd *render.Render, brandRepo repositories.BrandRepository, productRepo repositories.ProductRepositoryImpl, validate *validator.Validate) *BrandHandler {
	return &BrandHandler{
		render:      rnd,
		brandRepo:   brandRepo,
		productRepo: productRepo,
		validator:   validate,
	}
}

type BrandForm struct {
	Name string `json:"name" validate:"required,max=255"`
	Slug string `json:"slug" validate:"required,max=255"`
}

func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brandRepo.GetAll(r.Context())
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to list brands: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, brands)
}

func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form BrandForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("ข้อมูลแบรนด์ไม่ถูกต้อง"))
		return
	}

	existing, err := h.brandRepo.FindByName(r.Context(), form.Name)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to check brand name: %w", err)))
		return
	}
	if existing != nil {
		respondError(h.render, w, apperrors.BusinessRule("ชื่อแบรนด์นี้ถูกใช้งานแล้ว"))
		return
	}

	brand := &models.Brand{Name: form.Name, Slug: form.Slug}
	if err := h.brandRepo.Create(r.Context(), brand); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to create brand: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, brand)
}

func (h *BrandHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	brand, err := h.brandRepo.GetByID(r.Context(), id)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to load brand: %w", err)))
		return
	}
	if brand == nil {
		respondError(h.render, w, apperrors.NotFound("ไม่พบแบรนด์สินค้า"))
		return
	}

	var form BrandForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("ข้อมูลแบรนด์ไม่ถูกต้อง"))
		return
	}

	duplicate, err := h.brandRepo.FindByName(r.Context(), form.Name)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to check brand name: %w", err)))
		return
	}
	if duplicate != nil && duplicate.ID != brand.ID {
		respondError(h.render, w, apperrors.BusinessRule("ชื่อแบรนด์นี้ถูกใช้งานแล้ว"))
		return
	}

	brand.Name = form.Name
	brand.Slug = form.Slug
	if err := h.brandRepo.Update(r.Context(), brand); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to update brand: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, brand)
}

// Delete refuses while products still reference the brand.
func (h *BrandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	count, err := h.productRepo.CountByBrandID(r.Context(), id)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to check brand references: %w", err)))
		return
	}
	if count > 0 {
		respondError(h.render, w, apperrors.BusinessRule("ไม่สามารถลบแบรนด์ได้ เนื่องจากมีสินค้าอ้างอิงอยู่"))
		return
	}

	if err := h.brandRepo.Delete(r.Context(), id); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to delete brand: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "ลบแบรนด์เรียบร้อยแล้ว"})
}

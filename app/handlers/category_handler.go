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

type CategoryHandler struct {
	render       *render.Render
	categoryRepo repositories.CategoryRepository
	productRepo  repositories.ProductRepositoryImpl
	validator    *validator.Validate
}

func NewCategoryHandler(rnd *render.Render, categoryRepo repositories.CategoryRepository, productRepo repositories.ProductRepositoryImpl, validate *validator.Validate) *CategoryHandler {
	return &CategoryHandler{
		render:       rnd,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		validator:    validate,
	}
}

type CategoryForm struct {
	Name string `json:"name" validate:"required,max=255"`
	Slug string `json:"slug" validate:"required,max=255"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.GetAll(r.Context())
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to list categories: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form CategoryForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("ข้อมูลหมวดหมู่ไม่ถูกต้อง"))
		return
	}

	existing, err := h.categoryRepo.FindByName(r.Context(), form.Name)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to check category name: %w", err)))
		return
	}
	if existing != nil {
		respondError(h.render, w, apperrors.BusinessRule("ชื่อหมวดหมู่นี้ถูกใช้งานแล้ว"))
		return
	}

	category := &models.Category{Name: form.Name, Slug: form.Slug}
	if err := h.categoryRepo.Create(r.Context(), category); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to create category: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	category, err := h.categoryRepo.GetByID(r.Context(), id)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to load category: %w", err)))
		return
	}
	if category == nil {
		respondError(h.render, w, apperrors.NotFound("ไม่พบหมวดหมู่สินค้า"))
		return
	}

	var form CategoryForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("ข้อมูลหมวดหมู่ไม่ถูกต้อง"))
		return
	}

	duplicate, err := h.categoryRepo.FindByName(r.Context(), form.Name)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to check category name: %w", err)))
		return
	}
	if duplicate != nil && duplicate.ID != category.ID {
		respondError(h.render, w, apperrors.BusinessRule("ชื่อหมวดหมู่นี้ถูกใช้งานแล้ว"))
		return
	}

	category.Name = form.Name
	category.Slug = form.Slug
	if err := h.categoryRepo.Update(r.Context(), category); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to update category: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, category)
}

// Delete refuses while products still reference the category.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	count, err := h.productRepo.CountByCategoryID(r.Context(), id)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to check category references: %w", err)))
		return
	}
	if count > 0 {
		respondError(h.render, w, apperrors.BusinessRule("ไม่สามารถลบหมวดหมู่ได้ เนื่องจากมีสินค้าอ้างอิงอยู่"))
		return
	}

	if err := h.categoryRepo.Delete(r.Context(), id); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to delete category: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "ลบหมวดหมู่เรียบร้อยแล้ว"})
}

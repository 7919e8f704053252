package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/middlewares"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
	"github.com/unrolled/render"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	render      *render.Render
	userRepo    repositories.UserRepositoryImpl
	addressRepo repositories.AddressRepository
	productRepo repositories.ProductRepositoryImpl
	validator   *validator.Validate
}

func NewUserHandler(
	rnd *render.Render,
	userRepo repositories.UserRepositoryImpl,
	addressRepo repositories.AddressRepository,
	productRepo repositories.ProductRepositoryImpl,
	validate *validator.Validate,
) *UserHandler {
	return &UserHandler{
		render:      rnd,
		userRepo:    userRepo,
		addressRepo: addressRepo,
		productRepo: productRepo,
		validator:   validate,
	}
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	_ = h.render.JSON(w, http.StatusOK, user)
}

type ProfileForm struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Phone     string `json:"phone" validate:"omitempty,min=9,max=15"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)

	var form ProfileForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("ข้อมูลโปรไฟล์ไม่ถูกต้อง กรุณาตรวจสอบอีกครั้ง"))
		return
	}

	user.FirstName = form.FirstName
	user.LastName = form.LastName
	user.Phone = form.Phone
	if form.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err)))
			return
		}
		user.Password = string(hashed)
	}

	if err := h.userRepo.Update(r.Context(), user); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to update profile: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, user)
}

type AddressForm struct {
	Name     string `json:"name" validate:"required,max=255"`
	Phone    string `json:"phone" validate:"required,min=9,max=15"`
	Address1 string `json:"address1" validate:"required"`
	Address2 string `json:"address2"`
	District string `json:"district" validate:"required,max=100"`
	Province string `json:"province" validate:"required,max=100"`
	PostCode string `json:"post_code" validate:"required,len=5,numeric"`
}

func (h *UserHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)

	addresses, err := h.addressRepo.FindByUserID(r.Context(), user.ID)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to list addresses: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, addresses)
}

// CreateAddress saves a shipping address. The first one a user saves
// becomes their default automatically.
func (h *UserHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)

	var form AddressForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("รหัสไปรษณีย์ไม่ถูกต้อง หรือข้อมูลที่อยู่ไม่ครบถ้วน"))
		return
	}

	count, err := h.addressRepo.CountByUserID(r.Context(), user.ID)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to count addresses: %w", err)))
		return
	}

	address := &models.Address{
		UserID:    user.ID,
		Name:      form.Name,
		Phone:     form.Phone,
		Address1:  form.Address1,
		Address2:  form.Address2,
		District:  form.District,
		Province:  form.Province,
		PostCode:  form.PostCode,
		IsDefault: count == 0,
	}
	if err := h.addressRepo.Create(r.Context(), address); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to create address: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, address)
}

func (h *UserHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)

	address, err := h.ownedAddress(r, user)
	if err != nil {
		respondError(h.render, w, err)
		return
	}

	var form AddressForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("รหัสไปรษณีย์ไม่ถูกต้อง หรือข้อมูลที่อยู่ไม่ครบถ้วน"))
		return
	}

	address.Name = form.Name
	address.Phone = form.Phone
	address.Address1 = form.Address1
	address.Address2 = form.Address2
	address.District = form.District
	address.Province = form.Province
	address.PostCode = form.PostCode

	if err := h.addressRepo.Update(r.Context(), address); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to update address: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, address)
}

func (h *UserHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)

	address, err := h.ownedAddress(r, user)
	if err != nil {
		respondError(h.render, w, err)
		return
	}

	if err := h.addressRepo.Delete(r.Context(), address.ID); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to delete address: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "ลบที่อยู่เรียบร้อยแล้ว"})
}

func (h *UserHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	addressID := mux.Vars(r)["id"]

	if err := h.addressRepo.SetDefault(r.Context(), user.ID, addressID); err != nil {
		respondError(h.render, w, apperrors.NotFound("ไม่พบที่อยู่จัดส่ง"))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "ตั้งเป็นที่อยู่หลักเรียบร้อยแล้ว"})
}

func (h *UserHandler) ownedAddress(r *http.Request, user *models.User) (*models.Address, error) {
	id := mux.Vars(r)["id"]

	address, err := h.addressRepo.FindByID(r.Context(), id)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load address: %w", err))
	}
	if address == nil || address.UserID != user.ID {
		return nil, apperrors.NotFound("ไม่พบที่อยู่จัดส่ง")
	}
	return address, nil
}

func (h *UserHandler) Wishlist(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)

	products, err := h.userRepo.GetWishlist(r.Context(), user.ID)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to load wishlist: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, products)
}

func (h *UserHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	productID := mux.Vars(r)["productId"]

	product, err := h.productRepo.GetByID(r.Context(), productID)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to load product: %w", err)))
		return
	}
	if product == nil {
		respondError(h.render, w, apperrors.NotFound("ไม่พบสินค้า"))
		return
	}

	if err := h.userRepo.AddToWishlist(r.Context(), user.ID, product); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to add to wishlist: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "เพิ่มสินค้าในรายการโปรดแล้ว"})
}

func (h *UserHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	productID := mux.Vars(r)["productId"]

	if err := h.userRepo.RemoveFromWishlist(r.Context(), user.ID, productID); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to remove from wishlist: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "นำสินค้าออกจากรายการโปรดแล้ว"})
}

// ListUsers is admin-only account browsing.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	users, total, err := h.userRepo.GetPaginated(r.Context(), limit, offset)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to list users: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, pagedResponse{Data: users, Total: total})
}

type RoleForm struct {
	Role string `json:"role" validate:"required"`
}

// UpdateRole promotes or demotes an account. Admins cannot demote
// themselves; that would lock the last admin out.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor := middlewares.CurrentUser(r)
	userID := mux.Vars(r)["id"]

	var form RoleForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if !models.ValidRole(form.Role) {
		respondError(h.render, w, apperrors.Validation("บทบาทผู้ใช้งานไม่ถูกต้อง"))
		return
	}
	if userID == actor.ID {
		respondError(h.render, w, apperrors.BusinessRule("ไม่สามารถเปลี่ยนบทบาทของตนเองได้"))
		return
	}

	target, err := h.userRepo.FindByID(r.Context(), userID)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to load user: %w", err)))
		return
	}
	if target == nil {
		respondError(h.render, w, apperrors.NotFound("ไม่พบผู้ใช้งาน"))
		return
	}

	if err := h.userRepo.UpdateRole(r.Context(), userID, form.Role); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to update role: %w", err)))
		return
	}

	target.Role = form.Role
	_ = h.render.JSON(w, http.StatusOK, target)
}

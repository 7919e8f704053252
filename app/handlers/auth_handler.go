package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
	"github.com/nattawatj/go-storefront/app/utils/sessions"
	"github.com/unrolled/render"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	render       *render.Render
	userRepo     repositories.UserRepositoryImpl
	sessionStore sessions.SessionStore
	validator    *validator.Validate
}

func NewAuthHandler(rnd *render.Render, userRepo repositories.UserRepositoryImpl, sessionStore sessions.SessionStore, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		render:       rnd,
		userRepo:     userRepo,
		sessionStore: sessionStore,
		validator:    validate,
	}
}

type RegisterForm struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,min=9,max=15"`
	Password  string `json:"password" validate:"required,min=6"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form RegisterForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("ข้อมูลสมัครสมาชิกไม่ถูกต้อง กรุณาตรวจสอบอีกครั้ง"))
		return
	}

	existing, err := h.userRepo.FindByEmail(r.Context(), form.Email)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to check email: %w", err)))
		return
	}
	if existing != nil {
		respondError(h.render, w, apperrors.BusinessRule("อีเมลนี้ถูกใช้งานแล้ว"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err)))
		return
	}

	user := &models.User{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Phone:     form.Phone,
		Password:  string(hashed),
		Role:      models.RoleCustomer,
	}
	if err := h.userRepo.Create(r.Context(), user); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to create user: %w", err)))
		return
	}

	zap.L().Info("user registered", zap.String("user_id", user.ID))
	_ = h.render.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form LoginForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("กรุณากรอกอีเมลและรหัสผ่าน"))
		return
	}

	user, err := h.userRepo.FindByEmail(r.Context(), form.Email)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to load user: %w", err)))
		return
	}
	if user == nil {
		respondError(h.render, w, apperrors.Unauthorized("อีเมลหรือรหัสผ่านไม่ถูกต้อง"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		respondError(h.render, w, apperrors.Unauthorized("อีเมลหรือรหัสผ่านไม่ถูกต้อง"))
		return
	}

	if err := h.sessionStore.SetUserID(w, r, user.ID); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to create session: %w", err)))
		return
	}

	_ = h.render.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore.Clear(w, r); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to clear session: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "ออกจากระบบเรียบร้อยแล้ว"})
}

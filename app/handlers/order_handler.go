package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/middlewares"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/services"
	"github.com/unrolled/render"
)

type OrderHandler struct {
	render    *render.Render
	orders    *services.OrderService
	validator *validator.Validate
}

func NewOrderHandler(rnd *render.Render, orders *services.OrderService, validate *validator.Validate) *OrderHandler {
	return &OrderHandler{render: rnd, orders: orders, validator: validate}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)

	var in services.CreateOrderInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(in); err != nil {
		respondError(h.render, w, apperrors.Validation("ข้อมูลคำสั่งซื้อไม่ถูกต้อง กรุณาตรวจสอบอีกครั้ง"))
		return
	}

	order, err := h.orders.Create(r.Context(), user.ID, in)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	limit, offset := pagination(r)

	in := services.ListOrdersInput{
		Status: models.OrderStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}
	if in.Status != "" && !in.Status.Valid() {
		respondError(h.render, w, apperrors.Validation("สถานะคำสั่งซื้อไม่ถูกต้อง"))
		return
	}

	orders, total, err := h.orders.List(r.Context(), user, in)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, pagedResponse{Data: orders, Total: total})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	orderID := mux.Vars(r)["id"]

	order, err := h.orders.Get(r.Context(), user, orderID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

type PaymentProofForm struct {
	ProofRef string `json:"proof_ref" validate:"required"`
}

// Pay attaches a bank-transfer payment proof to a pending order.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	orderID := mux.Vars(r)["id"]

	var form PaymentProofForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}

	order, err := h.orders.MarkPaid(r.Context(), user, orderID, form.ProofRef)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

type OrderStatusForm struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// UpdateStatus is the back-office transition endpoint.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var form OrderStatusForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, form.Status)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	orderID := mux.Vars(r)["id"]

	order, err := h.orders.Cancel(r.Context(), user, orderID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

// ConfirmReceived closes out a shipped order on the customer's word.
func (h *OrderHandler) ConfirmReceived(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	orderID := mux.Vars(r)["id"]

	order, err := h.orders.ConfirmReceived(r.Context(), user, orderID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nattawatj/go-storefront/app/middlewares"
	"github.com/nattawatj/go-storefront/app/services"
	"github.com/unrolled/render"
)

type CartHandler struct {
	render *render.Render
	carts  *services.CartService
}

func NewCartHandler(rnd *render.Render, carts *services.CartService) *CartHandler {
	return &CartHandler{render: rnd, carts: carts}
}

type CartItemForm struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty" validate:"required,min=1"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)

	summary, err := h.carts.GetUserCart(r.Context(), user.ID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, summary)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)

	var form CartItemForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}

	summary, err := h.carts.AddItem(r.Context(), user.ID, form.ProductID, form.Qty)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, summary)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	productID := mux.Vars(r)["productId"]

	var form struct {
		Qty int `json:"qty"`
	}
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}

	summary, err := h.carts.UpdateItem(r.Context(), user.ID, productID, form.Qty)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, summary)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	productID := mux.Vars(r)["productId"]

	summary, err := h.carts.RemoveItem(r.Context(), user.ID, productID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, summary)
}

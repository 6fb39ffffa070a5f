package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type applyDiscountRequest struct {
	Code string `json:"code" validate:"required,max=50"`
}

type CartHandler struct {
	render   *render.Render
	cartSvc  *services.CartService
	validate *validator.Validate
}

func NewCartHandler(render *render.Render, cartSvc *services.CartService, validate *validator.Validate) *CartHandler {
	return &CartHandler{render: render, cartSvc: cartSvc, validate: validate}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.cartSvc.Read(ctx, helpers.GetCartKeyFromContext(ctx))
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req services.AddItemInput
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}

	ctx := r.Context()
	cart, err := h.cartSvc.Add(ctx, helpers.GetCartKeyFromContext(ctx), req)
	if err != nil {
		log.Printf("CartHandler.AddItem: product %s variant %q: %v", req.ProductID, req.VariantID, err)
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		helpers.WriteBadRequest(h.render, w, "line index must be a number")
		return
	}

	ctx := r.Context()
	cart, err := h.cartSvc.Remove(ctx, helpers.GetCartKeyFromContext(ctx), index)
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.cartSvc.Clear(ctx, helpers.GetCartKeyFromContext(ctx)); err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req applyDiscountRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}

	ctx := r.Context()
	cart, err := h.cartSvc.ApplyDiscount(ctx, helpers.GetCartKeyFromContext(ctx), req.Code)
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusOK, cart)
}

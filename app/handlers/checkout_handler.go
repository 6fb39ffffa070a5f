package handlers

import (
	"log"
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

type checkoutRequest struct {
	AddressID    string `json:"address_id" validate:"required"`
	DiscountCode string `json:"discount_code" validate:"max=50"`
}

type CheckoutHandler struct {
	render      *render.Render
	checkoutSvc *services.CheckoutService
	validate    *validator.Validate
}

func NewCheckoutHandler(render *render.Render, checkoutSvc *services.CheckoutService, validate *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{render: render, checkoutSvc: checkoutSvc, validate: validate}
}

// Checkout places a cash-on-delivery order from the session cart.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}

	ctx := r.Context()
	userID := helpers.GetUserIDFromContext(ctx)
	summary, err := h.checkoutSvc.CheckoutSession(ctx, helpers.GetCartKeyFromContext(ctx), userID, req.AddressID, req.DiscountCode)
	if err != nil {
		log.Printf("CheckoutHandler.Checkout: user %s: %v", userID, err)
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, summary)
}

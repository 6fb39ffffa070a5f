package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type transitionRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
	// StoreID optionally scopes the change to one store.
	StoreID string `json:"store_id"`
}

type OrderHandler struct {
	render   *render.Render
	orderSvc *services.OrderService
	validate *validator.Validate
}

func NewOrderHandler(render *render.Render, orderSvc *services.OrderService, validate *validator.Validate) *OrderHandler {
	return &OrderHandler{render: render, orderSvc: orderSvc, validate: validate}
}

func (h *OrderHandler) OrderListGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orders, err := h.orderSvc.ListOrdersForUser(ctx, helpers.GetUserIDFromContext(ctx))
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	h.render.JSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *OrderHandler) OrderDetailGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order, err := h.orderSvc.GetOrder(ctx, mux.Vars(r)["id"], helpers.GetUserIDFromContext(ctx))
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusOK, order)
}

// UpdateStatus is the operator endpoint that drives the order lifecycle.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}

	ctx := r.Context()
	result, err := h.orderSvc.Transition(ctx, services.TransitionInput{
		OrderID: mux.Vars(r)["id"],
		Status:  req.Status,
		Actor:   helpers.GetActorFromContext(ctx),
		StoreID: req.StoreID,
	})
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusOK, result)
}

func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.orderSvc.History(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("store_id"))
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	if history == nil {
		history = []models.OrderStatusHistory{}
	}
	h.render.JSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func (h *OrderHandler) StoreOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	orders, err := h.orderSvc.ListOrdersForStore(r.Context(), mux.Vars(r)["id"], status)
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	h.render.JSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

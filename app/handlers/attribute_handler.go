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

type AttributeHandler struct {
	render   *render.Render
	attrSvc  *services.AttributeService
	validate *validator.Validate
}

func NewAttributeHandler(render *render.Render, attrSvc *services.AttributeService, validate *validator.Validate) *AttributeHandler {
	return &AttributeHandler{render: render, attrSvc: attrSvc, validate: validate}
}

func (h *AttributeHandler) ListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.attrSvc.ListColors(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	if colors == nil {
		colors = []models.Color{}
	}
	h.render.JSON(w, http.StatusOK, map[string]interface{}{"colors": colors})
}

func (h *AttributeHandler) CreateColor(w http.ResponseWriter, r *http.Request) {
	var req services.CreateColorInput
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}
	color, err := h.attrSvc.CreateColor(r.Context(), req)
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, color)
}

func (h *AttributeHandler) DeleteColor(w http.ResponseWriter, r *http.Request) {
	if err := h.attrSvc.DeleteColor(r.Context(), mux.Vars(r)["id"]); err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AttributeHandler) ListSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.attrSvc.ListSizes(r.Context(), models.SizeKind(r.URL.Query().Get("kind")))
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	if sizes == nil {
		sizes = []models.Size{}
	}
	h.render.JSON(w, http.StatusOK, map[string]interface{}{"sizes": sizes})
}

func (h *AttributeHandler) CreateSize(w http.ResponseWriter, r *http.Request) {
	var req services.CreateSizeInput
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}
	size, err := h.attrSvc.CreateSize(r.Context(), req)
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, size)
}

func (h *AttributeHandler) DeleteSize(w http.ResponseWriter, r *http.Request) {
	if err := h.attrSvc.DeleteSize(r.Context(), mux.Vars(r)["id"]); err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

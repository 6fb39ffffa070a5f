package handlers

import (
	"log"
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

type generateRequest struct {
	ColorIDs     []string         `json:"color_ids"`
	SizeIDs      []string         `json:"size_ids"`
	DefaultQty   int              `json:"default_qty" validate:"gte=0"`
	DefaultPrice *decimal.Decimal `json:"default_price"`
	Enabled      *bool            `json:"enabled"`
}

type addVariantRequest struct {
	ColorID string           `json:"color_id"`
	SizeID  string           `json:"size_id"`
	Qty     int              `json:"qty" validate:"gte=0"`
	Price   *decimal.Decimal `json:"price"`
	Enabled *bool            `json:"enabled"`
}

// bulkFilter selects rows by color and size. An absent field matches all.
type bulkFilter struct {
	ColorID      *string `json:"color_id"`
	SizeID       *string `json:"size_id"`
	RequireMatch bool    `json:"require_match"`
}

func (f bulkFilter) toRepo() repositories.VariantFilter {
	return repositories.VariantFilter{ColorID: f.ColorID, SizeID: f.SizeID}
}

type setStockRequest struct {
	bulkFilter
	Qty *int `json:"qty" validate:"required,gte=0"`
}

type setPriceRequest struct {
	bulkFilter
	// Price null clears the override so the product base price applies.
	Price *decimal.Decimal `json:"price"`
}

type setEnabledRequest struct {
	bulkFilter
	Enabled *bool `json:"enabled" validate:"required"`
}

type VariantHandler struct {
	render     *render.Render
	variantSvc *services.VariantMatrixService
	validate   *validator.Validate
}

func NewVariantHandler(render *render.Render, variantSvc *services.VariantMatrixService, validate *validator.Validate) *VariantHandler {
	return &VariantHandler{render: render, variantSvc: variantSvc, validate: validate}
}

func (h *VariantHandler) List(w http.ResponseWriter, r *http.Request) {
	variants, err := h.variantSvc.ListVariants(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	if variants == nil {
		variants = []models.Variant{}
	}
	h.render.JSON(w, http.StatusOK, map[string]interface{}{"variants": variants})
}

func (h *VariantHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addVariantRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}
	variant, err := h.variantSvc.AddVariant(r.Context(), services.AddVariantInput{
		ProductID: mux.Vars(r)["id"],
		ColorID:   req.ColorID,
		SizeID:    req.SizeID,
		Qty:       req.Qty,
		Price:     req.Price,
		Enabled:   req.Enabled == nil || *req.Enabled,
	})
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, variant)
}

func (h *VariantHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}
	productID := mux.Vars(r)["id"]
	result, err := h.variantSvc.Generate(r.Context(), services.GenerateInput{
		ProductID:    productID,
		ColorIDs:     req.ColorIDs,
		SizeIDs:      req.SizeIDs,
		DefaultQty:   req.DefaultQty,
		DefaultPrice: req.DefaultPrice,
		Enabled:      req.Enabled == nil || *req.Enabled,
	})
	if err != nil {
		log.Printf("VariantHandler.Generate: product %s: %v", productID, err)
		helpers.WriteError(h.render, w, err)
		return
	}
	if result.Created == nil {
		result.Created = []models.Variant{}
	}
	h.render.JSON(w, http.StatusOK, result)
}

func (h *VariantHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req setStockRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}
	updated, err := h.variantSvc.SetStock(r.Context(), mux.Vars(r)["id"], req.toRepo(), *req.Qty, req.RequireMatch)
	h.writeUpdated(w, updated, err)
}

func (h *VariantHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	var req setPriceRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}
	updated, err := h.variantSvc.SetPrice(r.Context(), mux.Vars(r)["id"], req.toRepo(), req.Price, req.RequireMatch)
	h.writeUpdated(w, updated, err)
}

func (h *VariantHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req setEnabledRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		helpers.WriteValidationError(h.render, w, err)
		return
	}
	updated, err := h.variantSvc.SetEnabled(r.Context(), mux.Vars(r)["id"], req.toRepo(), *req.Enabled, req.RequireMatch)
	h.writeUpdated(w, updated, err)
}

func (h *VariantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.variantSvc.DeleteVariant(r.Context(), mux.Vars(r)["id"]); err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VariantHandler) writeUpdated(w http.ResponseWriter, updated int64, err error) {
	if err != nil {
		helpers.WriteError(h.render, w, err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/db/testdb"
	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const operatorToken = "operator-secret-token"

// headerSessions stands in for the cookie store: the cart key and user come
// from request headers.
type headerSessions struct{}

func (headerSessions) GetUserID(r *http.Request) string { return r.Header.Get("X-Test-User") }
func (headerSessions) SetUserID(http.ResponseWriter, *http.Request, string) error {
	return nil
}
func (headerSessions) GetCartKey(r *http.Request) string { return r.Header.Get("X-Test-Cart") }
func (headerSessions) EnsureCartKey(w http.ResponseWriter, r *http.Request) (string, error) {
	if key := r.Header.Get("X-Test-Cart"); key != "" {
		return key, nil
	}
	return "anonymous", nil
}
func (headerSessions) ClearSession(http.ResponseWriter, *http.Request) error { return nil }

type apiFixture struct {
	db     *gorm.DB
	router *mux.Router
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	db := testdb.Open(t)
	carts, err := sessions.NewLRUCartStore(100)
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte(operatorToken), bcrypt.MinCost)
	require.NoError(t, err)

	router := NewRouter(Options{
		DB:                db,
		Sessions:          headerSessions{},
		CartStore:         carts,
		Registry:          prometheus.NewRegistry(),
		Checkout:          services.CheckoutConfig{DeliveryFee: decimal.NewFromInt(1000)},
		Money:             format.NewMoney("IQD "),
		OperatorTokenHash: string(hash),
	})
	return &apiFixture{db: db, router: router}
}

type call struct {
	method, path string
	body         interface{}
	user, cart   string
	operator     bool
}

func (a *apiFixture) do(t *testing.T, c call) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.Header.Set("X-Test-User", c.user)
	}
	if c.cart != "" {
		req.Header.Set("X-Test-Cart", c.cart)
	}
	if c.operator {
		req.Header.Set(helpers.OperatorTokenHeader, operatorToken)
		req.Header.Set(helpers.OperatorNameHeader, "dana")
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	e, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "body has no error object: %v", body)
	return e["code"].(string)
}

func (a *apiFixture) seedShirt(t *testing.T, stock int) (*models.Store, *models.Product, *models.Variant) {
	t.Helper()
	store := testdb.Store(t, a.db, "North")
	product := testdb.Product(t, a.db, store.ID, "Shirt", 5000, models.SizeTypeSymbolic)
	red := testdb.Color(t, a.db, "Red")
	m := testdb.Size(t, a.db, "M", models.SizeKindSymbolic, 3)
	return store, product, testdb.Variant(t, a.db, product.ID, red.ID, m.ID, stock)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	rec, body := a.do(t, call{method: "GET", path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestCartAndCheckoutFlow(t *testing.T) {
	a := newAPI(t)
	store, product, variant := a.seedShirt(t, 5)
	address := testdb.Address(t, a.db, "u1", "Erbil")

	rec, body := a.do(t, call{method: "POST", path: "/cart/items", cart: "c1",
		body: map[string]interface{}{"product_id": product.ID, "variant_id": variant.ID, "quantity": 2}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, body["lines"], 1)
	assert.Equal(t, "IQD 11,000", body["display"].(map[string]interface{})["total"])

	rec, body = a.do(t, call{method: "POST", path: "/cart/discount", cart: "c1",
		body: map[string]string{"code": "welcome10"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "WELCOME10", body["discount_code"])

	rec, body = a.do(t, call{method: "POST", path: "/checkout", cart: "c1",
		body: map[string]string{"address_id": address.ID}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", errorCode(t, body))

	rec, body = a.do(t, call{method: "POST", path: "/checkout", cart: "c1", user: "u1",
		body: map[string]string{"address_id": address.ID}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, store.ID, body["store_id"])
	assert.Equal(t, "pending", body["status"])
	assert.True(t, decimal.RequireFromString(body["total_amount"].(string)).Equal(decimal.NewFromInt(10000)))
	orderID := body["order_id"].(string)

	rec, body = a.do(t, call{method: "GET", path: "/cart", cart: "c1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["lines"])

	rec, body = a.do(t, call{method: "GET", path: "/orders", user: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["orders"], 1)

	rec, _ = a.do(t, call{method: "GET", path: "/orders/" + orderID, user: "u1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = a.do(t, call{method: "GET", path: "/orders/" + orderID, user: "u2"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "OrderNotFound", errorCode(t, body))
}

func TestCheckout_EmptyCartError(t *testing.T) {
	a := newAPI(t)
	address := testdb.Address(t, a.db, "u1", "Erbil")

	rec, body := a.do(t, call{method: "POST", path: "/checkout", cart: "empty", user: "u1",
		body: map[string]string{"address_id": address.ID}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EmptyCart", errorCode(t, body))
	assert.Equal(t, false, body["error"].(map[string]interface{})["retryable"])
}

func TestCart_Errors(t *testing.T) {
	a := newAPI(t)
	_, product, variant := a.seedShirt(t, 1)

	rec, body := a.do(t, call{method: "POST", path: "/cart/items", cart: "c1",
		body: map[string]interface{}{"product_id": product.ID, "variant_id": variant.ID, "quantity": 3}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "InsufficientStock", errorCode(t, body))

	rec, body = a.do(t, call{method: "POST", path: "/cart/items", cart: "c1",
		body: map[string]interface{}{"product_id": product.ID, "quantity": 0}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidInput", errorCode(t, body))

	rec, body = a.do(t, call{method: "DELETE", path: "/cart/items/4", cart: "c1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "LineNotFound", errorCode(t, body))

	rec, body = a.do(t, call{method: "POST", path: "/cart/discount", cart: "c1",
		body: map[string]string{"code": "BOGUS"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "InvalidDiscountCode", errorCode(t, body))

	rec, _ = a.do(t, call{method: "DELETE", path: "/cart", cart: "c1"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOperator_RequiresToken(t *testing.T) {
	a := newAPI(t)
	rec, body := a.do(t, call{method: "GET", path: "/operator/colors"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", errorCode(t, body))
}

func TestOperator_AttributesAndVariants(t *testing.T) {
	a := newAPI(t)
	store := testdb.Store(t, a.db, "North")
	product := testdb.Product(t, a.db, store.ID, "Shirt", 5000, models.SizeTypeSymbolic)

	rec, body := a.do(t, call{method: "POST", path: "/operator/colors", operator: true,
		body: map[string]string{"name": "Red", "code": "#FF0000"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	colorID := body["id"].(string)

	rec, body = a.do(t, call{method: "POST", path: "/operator/sizes", operator: true,
		body: map[string]interface{}{"name": "xl", "kind": "symbolic", "sort_order": 5}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "XL", body["name"])
	sizeID := body["id"].(string)

	rec, body = a.do(t, call{method: "POST", path: "/operator/sizes", operator: true,
		body: map[string]interface{}{"name": "XL", "kind": "huge"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"].(map[string]interface{})["fields"], "kind")

	path := "/operator/products/" + product.ID + "/variants"
	rec, body = a.do(t, call{method: "POST", path: path + "/generate", operator: true,
		body: map[string]interface{}{"color_ids": []string{colorID}, "size_ids": []string{sizeID}, "default_qty": 4}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, body["created"], 1)

	rec, body = a.do(t, call{method: "POST", path: path + "/generate", operator: true,
		body: map[string]interface{}{"color_ids": []string{colorID}, "size_ids": []string{sizeID}, "default_qty": 4}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["created"])
	assert.Equal(t, 1.0, body["skipped"])

	rec, body = a.do(t, call{method: "PATCH", path: path + "/stock", operator: true,
		body: map[string]interface{}{"color_id": colorID, "qty": 9}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1.0, body["updated"])

	rec, body = a.do(t, call{method: "PATCH", path: path + "/price", operator: true,
		body: map[string]interface{}{"price": "7500"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1.0, body["updated"])

	rec, body = a.do(t, call{method: "PATCH", path: path + "/enabled", operator: true,
		body: map[string]interface{}{"size_id": "missing", "enabled": false, "require_match": true}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NoVariantsMatched", errorCode(t, body))

	rec, body = a.do(t, call{method: "GET", path: path, operator: true})
	require.Equal(t, http.StatusOK, rec.Code)
	variants := body["variants"].([]interface{})
	require.Len(t, variants, 1)
	assert.Equal(t, 9.0, variants[0].(map[string]interface{})["stock_qty"])

	rec, body = a.do(t, call{method: "DELETE", path: "/operator/colors/" + colorID, operator: true})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "AttributeInUse", errorCode(t, body))

	variantID := variants[0].(map[string]interface{})["id"].(string)
	rec, _ = a.do(t, call{method: "DELETE", path: "/operator/variants/" + variantID, operator: true})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = a.do(t, call{method: "DELETE", path: "/operator/colors/" + colorID, operator: true})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOperator_OrderLifecycle(t *testing.T) {
	a := newAPI(t)
	store, product, variant := a.seedShirt(t, 5)
	address := testdb.Address(t, a.db, "u1", "Erbil")

	a.do(t, call{method: "POST", path: "/cart/items", cart: "c1",
		body: map[string]interface{}{"product_id": product.ID, "variant_id": variant.ID, "quantity": 1}})
	rec, body := a.do(t, call{method: "POST", path: "/checkout", cart: "c1", user: "u1",
		body: map[string]string{"address_id": address.ID}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID := body["order_id"].(string)

	status := "/operator/orders/" + orderID + "/status"
	rec, body = a.do(t, call{method: "POST", path: status, operator: true, body: map[string]string{"status": "accepted"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "pending", body["previous"])
	assert.Equal(t, "accepted", body["status"])

	rec, body = a.do(t, call{method: "POST", path: status, operator: true, body: map[string]string{"status": "pending"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "InvalidTransition", errorCode(t, body))

	rec, body = a.do(t, call{method: "GET", path: "/operator/orders/" + orderID + "/history", operator: true})
	require.Equal(t, http.StatusOK, rec.Code)
	history := body["history"].([]interface{})
	require.Len(t, history, 2)
	assert.Equal(t, "operator:dana", history[1].(map[string]interface{})["actor"])

	rec, body = a.do(t, call{method: "GET", path: "/operator/stores/" + store.ID + "/orders?status=accepted", operator: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["orders"], 1)

	rec, body = a.do(t, call{method: "GET", path: "/operator/stores/" + store.ID + "/orders?status=lost", operator: true})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "InvalidInput", errorCode(t, body))
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPI(t)
	a.do(t, call{method: "GET", path: "/health"})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	a := newAPI(t)
	rec, body := a.do(t, call{method: "GET", path: "/nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", errorCode(t, body))
}

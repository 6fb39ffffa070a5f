package routes

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/middlewares"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/Rakhulsr/go-storefront/app/utils/metrics"
	"github.com/Rakhulsr/go-storefront/app/utils/renderer"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type Options struct {
	DB        *gorm.DB
	Sessions  sessions.SessionStore
	CartStore sessions.CartStore
	// Registry receives the application collectors and backs /metrics.
	Registry          *prometheus.Registry
	Checkout          services.CheckoutConfig
	Money             *format.Money
	OperatorTokenHash string
	// CSRFKey enables CSRF protection on the customer routes when set.
	CSRFKey    []byte
	Production bool
}

func NewRouter(opts Options) *mux.Router {
	db := opts.DB
	rnd := renderer.New(opts.Production)
	validate := validator.New()
	m := metrics.New(opts.Registry)

	productRepo := repositories.NewProductRepository(db)
	attrRepo := repositories.NewAttributeRepository(db)
	variantRepo := repositories.NewVariantRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	orderItemRepo := repositories.NewOrderItemRepository(db)
	statusRepo := repositories.NewOrderStatusRepository(db)
	addressRepo := repositories.NewGormAddressRepository(db)

	cartSvc := services.NewCartService(db, opts.CartStore, productRepo, variantRepo, opts.Checkout.DeliveryFee, opts.Money)
	checkoutSvc := services.NewCheckoutService(db, opts.Checkout, addressRepo, productRepo, attrRepo, variantRepo,
		orderRepo, orderItemRepo, statusRepo, cartSvc, opts.Money, m)
	orderSvc := services.NewOrderService(db, orderRepo, statusRepo)
	attrSvc := services.NewAttributeService(db, attrRepo, variantRepo)
	variantSvc := services.NewVariantMatrixService(db, productRepo, attrRepo, variantRepo, orderItemRepo)

	cartHandler := handlers.NewCartHandler(rnd, cartSvc, validate)
	checkoutHandler := handlers.NewCheckoutHandler(rnd, checkoutSvc, validate)
	orderHandler := handlers.NewOrderHandler(rnd, orderSvc, validate)
	attrHandler := handlers.NewAttributeHandler(rnd, attrSvc, validate)
	variantHandler := handlers.NewVariantHandler(rnd, variantSvc, validate)
	healthHandler := handlers.NewHealthHandler(rnd, db)

	router := mux.NewRouter()
	router.Use(middlewares.MetricsMiddleware(m))

	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.Handle("/metrics", metrics.Handler(opts.Registry)).Methods("GET")

	shop := router.NewRoute().Subrouter()
	if len(opts.CSRFKey) > 0 {
		shop.Use(middlewares.CSRFMiddleware(opts.CSRFKey, opts.Production))
	}
	shop.Use(middlewares.SessionManagerMiddleware(opts.Sessions, rnd))

	shop.HandleFunc("/cart", cartHandler.GetCart).Methods("GET")
	shop.HandleFunc("/cart", cartHandler.ClearCart).Methods("DELETE")
	shop.HandleFunc("/cart/items", cartHandler.AddItem).Methods("POST")
	shop.HandleFunc("/cart/items/{index:[0-9]+}", cartHandler.RemoveItem).Methods("DELETE")
	shop.HandleFunc("/cart/discount", cartHandler.ApplyDiscount).Methods("POST")

	account := shop.NewRoute().Subrouter()
	account.Use(middlewares.RequireUserMiddleware(rnd))
	account.HandleFunc("/checkout", checkoutHandler.Checkout).Methods("POST")
	account.HandleFunc("/orders", orderHandler.OrderListGet).Methods("GET")
	account.HandleFunc("/orders/{id}", orderHandler.OrderDetailGet).Methods("GET")

	operator := router.PathPrefix("/operator").Subrouter()
	operator.Use(middlewares.OperatorAuthMiddleware(opts.OperatorTokenHash, rnd))

	operator.HandleFunc("/orders/{id}/status", orderHandler.UpdateStatus).Methods("POST")
	operator.HandleFunc("/orders/{id}/history", orderHandler.History).Methods("GET")
	operator.HandleFunc("/stores/{id}/orders", orderHandler.StoreOrders).Methods("GET")

	operator.HandleFunc("/colors", attrHandler.ListColors).Methods("GET")
	operator.HandleFunc("/colors", attrHandler.CreateColor).Methods("POST")
	operator.HandleFunc("/colors/{id}", attrHandler.DeleteColor).Methods("DELETE")
	operator.HandleFunc("/sizes", attrHandler.ListSizes).Methods("GET")
	operator.HandleFunc("/sizes", attrHandler.CreateSize).Methods("POST")
	operator.HandleFunc("/sizes/{id}", attrHandler.DeleteSize).Methods("DELETE")

	operator.HandleFunc("/products/{id}/variants", variantHandler.List).Methods("GET")
	operator.HandleFunc("/products/{id}/variants", variantHandler.Add).Methods("POST")
	operator.HandleFunc("/products/{id}/variants/generate", variantHandler.Generate).Methods("POST")
	operator.HandleFunc("/products/{id}/variants/stock", variantHandler.SetStock).Methods("PATCH")
	operator.HandleFunc("/products/{id}/variants/price", variantHandler.SetPrice).Methods("PATCH")
	operator.HandleFunc("/products/{id}/variants/enabled", variantHandler.SetEnabled).Methods("PATCH")
	operator.HandleFunc("/variants/{id}", variantHandler.Delete).Methods("DELETE")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rnd.JSON(w, http.StatusNotFound, map[string]interface{}{
			"error": map[string]interface{}{"code": "NotFound", "message": "no such route", "retryable": false},
		})
	})

	return router
}

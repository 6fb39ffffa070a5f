package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakhulsr/go-storefront/app/cmd"
	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/middlewares"
	"github.com/Rakhulsr/go-storefront/app/routes"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if len(os.Args) > 1 {
		cmd.RunCli()
		return
	}

	env := configs.LoadENV

	db, err := configs.OpenConnection()
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	log.Println("✅ Database connected.")

	keys, err := configs.LoadSessionKeys(env)
	if err != nil {
		log.Fatalf("Session keys: %v. Run `generate-keys` first.", err)
	}
	csrfKey, err := configs.CSRFAuthKey(env)
	if err != nil {
		log.Fatalf("CSRF key: %v", err)
	}
	if env.OperatorTokenHash == "" {
		log.Println("Warning: OPERATOR_TOKEN_HASH is empty, the operator API will refuse every request.")
	}

	carts, err := sessions.NewLRUCartStore(env.CartCacheSize)
	if err != nil {
		log.Fatalf("Cart store: %v", err)
	}
	sessionStore := sessions.NewCookieSessionStore(env.IsProduction(), keys.AuthKey, keys.EncKey)
	log.Println("✅ Session store initialized.")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := routes.NewRouter(routes.Options{
		DB:        db,
		Sessions:  sessionStore,
		CartStore: carts,
		Registry:  registry,
		Checkout: services.CheckoutConfig{
			DeliveryFee:    env.DeliveryFee,
			DeliveryCities: env.DeliveryCities,
			Timeout:        env.CheckoutTimeout,
		},
		Money:             format.NewMoney(env.CurrencySymbol),
		OperatorTokenHash: env.OperatorTokenHash,
		CSRFKey:           csrfKey,
		Production:        env.IsProduction(),
	})

	server := &http.Server{
		Addr:              env.Port,
		Handler:           middlewares.MethodOverrideMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start the server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	log.Println("Server stopped.")
}

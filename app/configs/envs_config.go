package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type ENV struct {
	DBHost            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBPort            string
	Port              string
	APP_ENV           string
	AppAuthKey        string
	AppEncKey         string
	CSRFKey           string
	OperatorTokenHash string
	CurrencySymbol    string
	DeliveryFee       decimal.Decimal
	DeliveryCities    []string
	CheckoutTimeout   time.Duration
	CartCacheSize     int
}

func LoadEnv() ENV {

	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: No .env file found ")
	}

	return ENV{
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            os.Getenv("DB_PORT"),
		Port:              getenv("APP_PORT", ":8080"),
		APP_ENV:           getenv("APP_ENV", "development"),
		AppAuthKey:        os.Getenv("APP_AUTH_KEY"),
		AppEncKey:         os.Getenv("APP_ENC_KEY"),
		CSRFKey:           os.Getenv("CSRF_KEY"),
		OperatorTokenHash: os.Getenv("OPERATOR_TOKEN_HASH"),
		CurrencySymbol:    getenv("CURRENCY_SYMBOL", "IQD "),
		DeliveryFee:       getDecimal("DELIVERY_FEE", decimal.NewFromInt(1000)),
		DeliveryCities:    getList("DELIVERY_CITIES"),
		CheckoutTimeout:   getDuration("CHECKOUT_TIMEOUT", 5*time.Second),
		CartCacheSize:     getInt("CART_CACHE_SIZE", 10000),
	}

}

var LoadENV = LoadEnv()

func (e ENV) IsProduction() bool {
	return e.APP_ENV == "production"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		log.Printf("Warning: invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

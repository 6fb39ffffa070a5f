package helpers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const (
	ContextKeyUserID  contextKey = "userID"
	ContextKeyCartKey contextKey = "cartKey"
	ContextKeyActor   contextKey = "actor"

	OperatorTokenHeader = "X-Operator-Token"
	OperatorNameHeader  = "X-Operator-Name"
)

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

func GetUserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(ContextKeyUserID).(string)
	return userID
}

func WithCartKey(ctx context.Context, cartKey string) context.Context {
	return context.WithValue(ctx, ContextKeyCartKey, cartKey)
}

func GetCartKeyFromContext(ctx context.Context) string {
	cartKey, _ := ctx.Value(ContextKeyCartKey).(string)
	return cartKey
}

func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

func GetActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(ContextKeyActor).(string)
	return actor
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.Tag() {
		case "required":
			errorMessages[field] = fmt.Sprintf("%s is required.", err.Field())
		case "numeric":
			errorMessages[field] = fmt.Sprintf("%s must be a number.", err.Field())
		case "min", "gte":
			errorMessages[field] = fmt.Sprintf("%s must be at least %s.", err.Field(), err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("%s must be at most %s.", err.Field(), err.Param())
		case "oneof":
			errorMessages[field] = fmt.Sprintf("%s must be one of: %s.", err.Field(), err.Param())
		case "hexcolor":
			errorMessages[field] = fmt.Sprintf("%s must be a hex color such as #ff0000.", err.Field())
		default:
			errorMessages[field] = fmt.Sprintf("%s failed the %s check.", err.Field(), err.Tag())
		}
	}
	return errorMessages
}

type errorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// StatusFor maps a service error code to the HTTP status clients see.
func StatusFor(code services.ErrorCode) int {
	switch code {
	case services.CodeProductNotFound, services.CodeVariantNotFound, services.CodeLineNotFound,
		services.CodeAttributeNotFound, services.CodeOrderNotFound:
		return http.StatusNotFound
	case services.CodeCheckoutStockFailed, services.CodeDuplicateVariant, services.CodeVariantInUse,
		services.CodeDuplicateAttribute, services.CodeAttributeInUse, services.CodeInvalidTransition,
		services.CodeOrderTerminal, services.CodeConflict, services.CodeInsufficientStock,
		services.CodeNoVariantAvailable:
		return http.StatusConflict
	case services.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

// WriteError renders err as {"error": {...}}. Internal causes are logged
// and never sent to the client.
func WriteError(rnd *render.Render, w http.ResponseWriter, err error) {
	svcErr := services.AsError(err)
	body := errorBody{Code: string(svcErr.Code), Message: svcErr.Message, Retryable: svcErr.Retryable}
	if svcErr.Code == services.CodeInternal {
		log.Printf("WriteError: %v", err)
		body.Message = "something went wrong, please try again later"
	}
	rnd.JSON(w, StatusFor(svcErr.Code), map[string]interface{}{"error": body})
}

// WriteValidationError renders validator failures as InvalidInput with a
// message per field.
func WriteValidationError(rnd *render.Render, w http.ResponseWriter, err error) {
	body := errorBody{Code: string(services.CodeInvalidInput), Message: "request is not valid"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body.Fields = FormatValidationErrors(verrs)
	} else {
		body.Message = err.Error()
	}
	rnd.JSON(w, http.StatusBadRequest, map[string]interface{}{"error": body})
}

func WriteBadRequest(rnd *render.Render, w http.ResponseWriter, message string) {
	rnd.JSON(w, http.StatusBadRequest, map[string]interface{}{
		"error": errorBody{Code: string(services.CodeInvalidInput), Message: message},
	})
}

func PasswordCompare(hashPass string, password []byte) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashPass), password)
	if err != nil {
		log.Printf("PasswordCompare: password does not match or error: %v", err)
		return false
	}
	return true
}

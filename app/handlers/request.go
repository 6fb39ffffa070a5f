package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst and runs the struct validators on
// it. An empty body decodes to the zero value.
func decodeJSON(r *http.Request, validate *validator.Validate, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return validate.Struct(dst)
}

// internal/adapters/in/http/handler/helper_handler.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	usecase "coplace/internal/application/usecase"
	cartdom "coplace/internal/domain/cart"
	productdom "coplace/internal/domain/product"
	threaddom "coplace/internal/domain/thread"
	userdom "coplace/internal/domain/user"
)

const maxJSONBody = 1 << 20

// productGetter resolves a product id (catalog snapshot first, store second).
type productGetter interface {
	GetByID(ctx context.Context, id string) (productdom.Product, error)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func unauthorized(w http.ResponseWriter) {
	writeMessage(w, http.StatusUnauthorized, "unauthorized")
}

func badRequest(w http.ResponseWriter, msg string) {
	writeMessage(w, http.StatusBadRequest, msg)
}

// writeErr maps domain / usecase errors onto HTTP status codes.
func writeErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= 500 {
		log.Printf("[http] %d: %v", code, err)
	}
	writeMessage(w, code, err.Error())
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, productdom.ErrNotFound),
		errors.Is(err, threaddom.ErrNotFound),
		errors.Is(err, userdom.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, productdom.ErrInvalidID),
		errors.Is(err, productdom.ErrInvalidName),
		errors.Is(err, productdom.ErrInvalidOrigin),
		errors.Is(err, productdom.ErrInvalidRoastLevel),
		errors.Is(err, productdom.ErrInvalidPrice),
		errors.Is(err, productdom.ErrInvalidDescription),
		errors.Is(err, productdom.ErrInvalidOwner),
		errors.Is(err, usecase.ErrProductInvalidUpload),
		errors.Is(err, cartdom.ErrInvalidProduct),
		errors.Is(err, cartdom.ErrInvalidQuantity),
		errors.Is(err, cartdom.ErrInvalidPrice),
		errors.Is(err, cartdom.ErrInvalidCart),
		errors.Is(err, usecase.ErrCartInvalidArgument),
		errors.Is(err, threaddom.ErrInvalidID),
		errors.Is(err, threaddom.ErrEmptyContent),
		errors.Is(err, threaddom.ErrContentTooLong),
		errors.Is(err, threaddom.ErrInvalidAuthor),
		errors.Is(err, threaddom.ErrInvalidLikeUser),
		errors.Is(err, threaddom.ErrParentNotFound),
		errors.Is(err, userdom.ErrInvalidID),
		errors.Is(err, userdom.ErrInvalidRole),
		errors.Is(err, userdom.ErrInvalidDisplayName):
		return http.StatusBadRequest

	case errors.Is(err, cartdom.ErrEmptyCart),
		errors.Is(err, cartdom.ErrCartFull),
		errors.Is(err, usecase.ErrCartClosed):
		return http.StatusConflict

	case errors.Is(err, usecase.ErrAnalysisFailed):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads exactly one JSON object with no unknown fields; an empty
// body decodes to the zero value.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.New("invalid json body")
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("invalid json body: trailing data")
	}
	return nil
}

func parseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

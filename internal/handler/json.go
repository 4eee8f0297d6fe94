package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/rmoura/storefront/internal/domain/customer"
	"github.com/rmoura/storefront/internal/domain/order"
	"github.com/rmoura/storefront/internal/domain/product"
)

// maxBodyBytes caps request body size; no API payload comes close to 1 MiB.
const maxBodyBytes = 1 << 20

// readBody reads and returns the request body, limited to maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// writeJSON writes the encoder's buffer with the given status code.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes a {code, message} JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, &e)
}

// writeDomainError maps err to an HTTP response. Validation errors are the
// client's fault and map to 4xx with the domain message; anything else is an
// infrastructure failure, logged and reported as an opaque 500.
// notFoundStatus controls whether ErrNotFound family errors surface as 404
// (resource lookups) or 400 (references inside a request body).
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, notFoundStatus int) {
	switch {
	case errors.Is(err, customer.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		writeError(w, notFoundStatus, err.Error())
		return
	case errors.Is(err, customer.ErrDuplicateEmail),
		errors.Is(err, product.ErrDuplicateName),
		errors.Is(err, customer.ErrNameRequired),
		errors.Is(err, customer.ErrEmailRequired),
		errors.Is(err, product.ErrNameRequired),
		errors.Is(err, product.ErrNegativePrice),
		errors.Is(err, product.ErrNegativeQuantity),
		errors.Is(err, product.ErrUpdatesRequired),
		errors.Is(err, order.ErrEmptyItems):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		invalidQty *order.InvalidQuantityError
		duplicate  *order.DuplicateItemError
		notFound   *order.ProductsNotFoundError
		outOfStock *order.OutOfStockError
	)
	if errors.As(err, &invalidQty) || errors.As(err, &duplicate) ||
		errors.As(err, &notFound) || errors.As(err, &outOfStock) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

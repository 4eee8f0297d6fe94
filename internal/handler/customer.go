package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/rmoura/storefront/internal/domain/customer"
)

// CreateCustomer handles POST /api/customers.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	var req customer.CreateCustomerRequest
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			req.Name, err = d.Str()
		case "email":
			req.Email, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := h.customers.CreateCustomer(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err, http.StatusBadRequest)
		return
	}

	var e jx.Encoder
	encodeCustomer(&e, c)
	writeJSON(w, http.StatusCreated, &e)
}

// GetCustomer handles GET /api/customers/{id}.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.GetCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err, http.StatusNotFound)
		return
	}

	var e jx.Encoder
	encodeCustomer(&e, c)
	writeJSON(w, http.StatusOK, &e)
}

func encodeCustomer(e *jx.Encoder, c *customer.Customer) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("email")
	e.Str(c.Email)
	if !c.CreatedAt.IsZero() {
		e.FieldStart("created_at")
		e.Str(c.CreatedAt.Format(time.RFC3339))
	}
	e.ObjEnd()
}

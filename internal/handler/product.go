package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/rmoura/storefront/internal/domain/product"
)

// CreateProduct handles POST /api/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	var req product.CreateProductRequest
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			req.Name, err = d.Str()
		case "price":
			var num jx.Num
			if num, err = d.Num(); err == nil {
				req.Price, err = decimal.NewFromString(num.String())
			}
		case "quantity":
			req.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := h.products.CreateProduct(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err, http.StatusBadRequest)
		return
	}

	var e jx.Encoder
	encodeProduct(&e, p)
	writeJSON(w, http.StatusCreated, &e)
}

// UpdateStock handles PUT /api/products/stock. The body is an array of
// {"id", "quantity"} entries with absolute stock levels; the response lists
// the products that were actually written.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	var updates []product.QuantityUpdate
	d := jx.DecodeBytes(body)
	if err := d.Arr(func(d *jx.Decoder) error {
		var u product.QuantityUpdate
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				u.ID, err = d.Str()
			case "quantity":
				u.Quantity, err = d.Int()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		updates = append(updates, u)
		return nil
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := h.products.UpdateStock(r.Context(), updates)
	if err != nil {
		writeDomainError(w, r, err, http.StatusBadRequest)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for i := range updated {
		encodeProduct(&e, &updated[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, r, err, http.StatusNotFound)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for i := range products {
		encodeProduct(&e, &products[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// GetProduct handles GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err, http.StatusNotFound)
		return
	}

	var e jx.Encoder
	encodeProduct(&e, p)
	writeJSON(w, http.StatusOK, &e)
}

func encodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Num(jx.Num(p.Price.StringFixed(2)))
	e.FieldStart("quantity")
	e.Int(p.Quantity)
	if !p.CreatedAt.IsZero() {
		e.FieldStart("created_at")
		e.Str(p.CreatedAt.Format(time.RFC3339))
	}
	e.ObjEnd()
}

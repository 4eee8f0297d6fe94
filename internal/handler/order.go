package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/rmoura/storefront/internal/domain/order"
)

// CreateOrder handles POST /api/orders. The request body mirrors the order
// workflow contract: {"customer_id": "...", "products": [{"id", "quantity"}]}.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	var req order.CreateOrderRequest
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "customer_id":
			var err error
			req.CustomerID, err = d.Str()
			return err
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				var item order.OrderItem
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "id":
						item.ProductID, err = d.Str()
					case "quantity":
						item.Quantity, err = d.Int()
					default:
						err = d.Skip()
					}
					return err
				}); err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err, http.StatusBadRequest)
		return
	}

	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusCreated, &e)
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err, http.StatusNotFound)
		return
	}

	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusOK, &e)
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("customer_id")
	e.Str(o.CustomerID)
	e.FieldStart("products")
	e.ArrStart()
	for _, item := range o.Items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(item.ProductID)
		e.FieldStart("price")
		e.Num(jx.Num(item.Price.StringFixed(2)))
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	if !o.CreatedAt.IsZero() {
		e.FieldStart("created_at")
		e.Str(o.CreatedAt.Format(time.RFC3339))
	}
	e.ObjEnd()
}

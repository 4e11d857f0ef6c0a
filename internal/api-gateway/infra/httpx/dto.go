package httpx

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
)

// Envelope is the body of every API response. Exactly one of the payload
// fields is set on success; Error and Details are set on failure.
type Envelope struct {
	Success   bool           `json:"success"`
	Data      any            `json:"data,omitempty"`
	CartID    string         `json:"cartId,omitempty"`
	Cart      *CartResponse  `json:"cart,omitempty"`
	Order     *OrderResponse `json:"order,omitempty"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
	Details   any            `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type AddItemRequest struct {
	ItemID   flexibleID `json:"itemId"`
	Quantity int        `json:"quantity"`
}

type CreateOrderRequest struct {
	CartID          string          `json:"cartId"`
	ShippingDetails json.RawMessage `json:"shippingDetails"`
}

type CheckoutRequest struct {
	Items        []CheckoutItemDTO `json:"items"`
	CustomerInfo json.RawMessage   `json:"customerInfo"`
}

type CheckoutItemDTO struct {
	ID       flexibleID `json:"id"`
	ItemID   flexibleID `json:"itemId"`
	Name     string     `json:"name"`
	Price    float64    `json:"price"`
	Quantity int        `json:"quantity"`
}

type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description,omitempty"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

type CartLineResponse struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

type CartResponse struct {
	ID        string             `json:"id"`
	Items     []CartLineResponse `json:"items"`
	ItemCount int                `json:"itemCount"`
	Total     float64            `json:"total"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt"`
}

type OrderResponse struct {
	ID              string             `json:"id"`
	CartID          string             `json:"cartId"`
	Items           []CartLineResponse `json:"items"`
	ShippingDetails json.RawMessage    `json:"shippingDetails,omitempty"`
	Total           float64            `json:"total"`
	PaymentMethod   string             `json:"paymentMethod"`
	Status          string             `json:"status"`
	CreatedAt       string             `json:"createdAt"`
}

type CheckoutAckResponse struct {
	Reference     string          `json:"reference"`
	Total         float64         `json:"total"`
	ItemCount     int             `json:"itemCount"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	CustomerInfo  json.RawMessage `json:"customerInfo,omitempty"`
	CreatedAt     string          `json:"createdAt"`
}

// flexibleID lets site builders send identifiers as strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func mapProduct(it entity.Item, placeholder string) ProductResponse {
	image := it.ImageURL
	if image == "" {
		image = placeholder
	}
	return ProductResponse{
		ID:          it.ID,
		Name:        it.Name,
		Price:       it.Price,
		Image:       image,
		Description: it.Description,
	}
}

func mapLines(lines []entity.CartLine) []CartLineResponse {
	out := make([]CartLineResponse, len(lines))
	for i, l := range lines {
		out[i] = CartLineResponse{
			ItemID:   l.ItemID,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal().InexactFloat64(),
		}
	}
	return out
}

func mapCart(c *entity.Cart) *CartResponse {
	count := 0
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return &CartResponse{
		ID:        c.ID,
		Items:     mapLines(c.Lines),
		ItemCount: count,
		Total:     entity.Total(c.Lines),
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

func mapOrder(o *entity.Order) *OrderResponse {
	return &OrderResponse{
		ID:              o.ID,
		CartID:          o.CartID,
		Items:           mapLines(o.Lines),
		ShippingDetails: o.ShippingDetails,
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethod,
		Status:          string(o.Status),
		CreatedAt:       formatTime(o.CreatedAt),
	}
}

func mapCheckoutAck(a *entity.CheckoutAck) CheckoutAckResponse {
	return CheckoutAckResponse{
		Reference:     a.Reference,
		Total:         a.Total,
		ItemCount:     a.ItemCount,
		Status:        string(a.Status),
		PaymentMethod: a.PaymentMethod,
		CustomerInfo:  a.CustomerInfo,
		CreatedAt:     formatTime(a.CreatedAt),
	}
}

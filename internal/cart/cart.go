// Package cart stages the lines of a sale or purchase before it reaches the ledger.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"bodega-pos/internal/ledger"
	"bodega-pos/internal/model"

	"github.com/shopspring/decimal"
)

var (
	ErrStockExceeded = errors.New("stock exceeded")
	ErrNotInCart     = errors.New("product is not in the cart")
	ErrEmpty         = errors.New("cart is empty")
	ErrNoPayment     = errors.New("purchases do not take a payment method")
)

// Item is one cart line. Stock is the snapshot taken when the product was
// first added.
type Item struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is not safe for concurrent use.
type Cart struct {
	kind           ledger.Kind
	items          []Item
	counterpartyID *uint
	paymentMethod  model.PaymentMethod
}

func New(kind ledger.Kind) *Cart {
	c := &Cart{kind: kind}
	c.resetDetails()
	return c
}

func (c *Cart) Kind() ledger.Kind {
	return c.kind
}

// capped is true when quantities may not exceed the stock snapshot.
func (c *Cart) capped() bool {
	return c.kind == ledger.KindSale
}

func (c *Cart) find(productID uint) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddOrIncrement inserts the product with quantity 1 or adds one unit to it.
// On a sale cart it refuses to go past the stock snapshot and leaves the
// cart untouched.
func (c *Cart) AddOrIncrement(p model.Product) error {
	if i := c.find(p.ID); i >= 0 {
		item := &c.items[i]
		if c.capped() && item.Quantity+1 > item.Stock {
			return fmt.Errorf("%w: only %d of %s available", ErrStockExceeded, item.Stock, item.Name)
		}
		item.Quantity++
		return nil
	}

	if c.capped() && p.Stock <= 0 {
		return fmt.Errorf("%w: %s is out of stock", ErrStockExceeded, p.Name)
	}
	price := p.PurchasePrice
	if c.kind == ledger.KindSale {
		price = p.SalePrice
	}
	c.items = append(c.items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: price,
		Stock:     p.Stock,
		Quantity:  1,
	})
	return nil
}

// SetQuantity removes the line when qty <= 0. A sale cart rejects a quantity
// above the stock snapshot and keeps the previous one.
func (c *Cart) SetQuantity(productID uint, qty int) error {
	i := c.find(productID)
	if qty <= 0 {
		if i >= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		}
		return nil
	}
	if i < 0 {
		return fmt.Errorf("%w: product %d", ErrNotInCart, productID)
	}
	if c.capped() && qty > c.items[i].Stock {
		return fmt.Errorf("%w: only %d of %s available", ErrStockExceeded, c.items[i].Stock, c.items[i].Name)
	}
	c.items[i].Quantity = qty
	return nil
}

func (c *Cart) Remove(productID uint) {
	if i := c.find(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// Clear empties the cart and resets counterparty and payment method.
func (c *Cart) Clear() {
	c.items = nil
	c.resetDetails()
}

func (c *Cart) resetDetails() {
	c.counterpartyID = nil
	c.paymentMethod = ""
	if c.kind == ledger.KindSale {
		c.paymentMethod = model.PaymentCash
	}
}

func (c *Cart) Quantity(productID uint) int {
	if i := c.find(productID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

func (c *Cart) Subtotal(productID uint) decimal.Decimal {
	if i := c.find(productID); i >= 0 {
		return c.items[i].Subtotal()
	}
	return decimal.Zero
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	return append([]Item(nil), c.items...)
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) SetCounterparty(id *uint) {
	c.counterpartyID = id
}

func (c *Cart) Counterparty() *uint {
	return c.counterpartyID
}

func (c *Cart) SetPaymentMethod(m model.PaymentMethod) error {
	if c.kind != ledger.KindSale {
		return ErrNoPayment
	}
	if !m.Valid() {
		return fmt.Errorf("unknown payment method %q", m)
	}
	c.paymentMethod = m
	return nil
}

func (c *Cart) PaymentMethod() model.PaymentMethod {
	return c.paymentMethod
}

// Request turns the cart into a ledger create request for the operator.
func (c *Cart) Request(operatorID string) (ledger.CreateRequest, error) {
	if len(c.items) == 0 {
		return ledger.CreateRequest{}, ErrEmpty
	}
	req := ledger.CreateRequest{
		CounterpartyID: c.counterpartyID,
		OperatorID:     operatorID,
		PaymentMethod:  c.paymentMethod,
		Lines:          make([]ledger.LineInput, 0, len(c.items)),
	}
	for _, item := range c.items {
		req.Lines = append(req.Lines, ledger.LineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return req, nil
}

type cartState struct {
	Kind           ledger.Kind         `json:"kind"`
	Items          []Item              `json:"items"`
	CounterpartyID *uint               `json:"counterparty_id,omitempty"`
	PaymentMethod  model.PaymentMethod `json:"payment_method,omitempty"`
	Total          decimal.Decimal     `json:"total"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(cartState{
		Kind:           c.kind,
		Items:          items,
		CounterpartyID: c.counterpartyID,
		PaymentMethod:  c.paymentMethod,
		Total:          c.Total(),
	})
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var st cartState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if !st.Kind.Valid() {
		return fmt.Errorf("cart: unknown kind %q", st.Kind)
	}
	c.kind = st.Kind
	c.items = st.Items
	c.counterpartyID = st.CounterpartyID
	c.paymentMethod = st.PaymentMethod
	return nil
}

package cart

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"bodega-pos/internal/ledger"
	"bodega-pos/internal/model"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func product(id uint, stock int, price string) model.Product {
	return model.Product{
		BaseModel:     model.BaseModel{ID: id},
		Name:          "Inca Kola 500ml",
		SalePrice:     decimal.RequireFromString(price),
		PurchasePrice: decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		Stock:         stock,
	}
}

func TestAddOrIncrementTwiceEqualsSetQuantityTwo(t *testing.T) {
	p := product(1, 5, "10.00")

	a := New(ledger.KindSale)
	if err := a.AddOrIncrement(p); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := a.AddOrIncrement(p); err != nil {
		t.Fatalf("second add: %v", err)
	}

	b := New(ledger.KindSale)
	if err := b.AddOrIncrement(p); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := b.SetQuantity(p.ID, 2); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	if a.Quantity(p.ID) != 2 || b.Quantity(p.ID) != 2 {
		t.Fatalf("expected quantity 2 in both carts, got %d and %d", a.Quantity(p.ID), b.Quantity(p.ID))
	}
	if !a.Total().Equal(b.Total()) {
		t.Fatalf("totals differ: %s vs %s", a.Total(), b.Total())
	}
	if a.Len() != 1 {
		t.Fatalf("duplicate add must merge, got %d lines", a.Len())
	}
}

func TestAddOutOfStockProductOnSaleCart(t *testing.T) {
	c := New(ledger.KindSale)
	err := c.AddOrIncrement(product(1, 0, "3.50"))
	if !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("cart must stay empty, has %d lines", c.Len())
	}
	if !c.Total().IsZero() {
		t.Fatalf("total must stay zero, got %s", c.Total())
	}
}

func TestIncrementStopsAtStockSnapshot(t *testing.T) {
	p := product(1, 2, "1.50")
	c := New(ledger.KindSale)
	for i := 0; i < 2; i++ {
		if err := c.AddOrIncrement(p); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if err := c.AddOrIncrement(p); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded on third add, got %v", err)
	}
	if c.Quantity(p.ID) != 2 {
		t.Fatalf("quantity changed to %d", c.Quantity(p.ID))
	}
}

func TestSetQuantityAboveStockKeepsPriorValue(t *testing.T) {
	p := product(1, 2, "10.00")
	c := New(ledger.KindSale)
	if err := c.AddOrIncrement(p); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := c.Total()

	if err := c.SetQuantity(p.ID, 5); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded, got %v", err)
	}
	if c.Quantity(p.ID) != 1 {
		t.Fatalf("quantity should remain 1, got %d", c.Quantity(p.ID))
	}
	if !c.Total().Equal(before) {
		t.Fatalf("total changed from %s to %s", before, c.Total())
	}
}

func TestSetQuantityOnMissingProduct(t *testing.T) {
	c := New(ledger.KindSale)
	if err := c.SetQuantity(9, 3); !errors.Is(err, ErrNotInCart) {
		t.Fatalf("expected ErrNotInCart, got %v", err)
	}
	if err := c.SetQuantity(9, 0); err != nil {
		t.Fatalf("removing a missing line should be a no-op, got %v", err)
	}
}

func TestSetQuantityZeroOrNegativeRemovesLine(t *testing.T) {
	tests := []struct {
		name string
		qty  int
	}{
		{"zero", 0},
		{"negative", -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := product(1, 5, "2.00")
			c := New(ledger.KindSale)
			if err := c.AddOrIncrement(p); err != nil {
				t.Fatalf("add: %v", err)
			}
			if err := c.SetQuantity(p.ID, tt.qty); err != nil {
				t.Fatalf("set quantity: %v", err)
			}
			if c.Len() != 0 {
				t.Fatalf("line should be removed")
			}
		})
	}
}

func TestPurchaseCartHasNoCeiling(t *testing.T) {
	p := product(1, 0, "4.00")
	c := New(ledger.KindPurchase)
	if err := c.AddOrIncrement(p); err != nil {
		t.Fatalf("add out-of-stock product to purchase cart: %v", err)
	}
	if err := c.SetQuantity(p.ID, 48); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	// purchase carts price at purchase price
	want := decimal.RequireFromString("96")
	if !c.Total().Equal(want) {
		t.Fatalf("total = %s, want %s", c.Total(), want)
	}
}

func TestSubtotalsAndTotal(t *testing.T) {
	c := New(ledger.KindSale)
	a := product(1, 10, "2.50")
	b := product(2, 10, "1.20")
	b.Name = "Pan francés"
	for i := 0; i < 3; i++ {
		if err := c.AddOrIncrement(a); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.AddOrIncrement(b); err != nil {
		t.Fatal(err)
	}
	if got := c.Subtotal(1); !got.Equal(decimal.RequireFromString("7.50")) {
		t.Fatalf("subtotal(1) = %s", got)
	}
	if got := c.Total(); !got.Equal(decimal.RequireFromString("8.70")) {
		t.Fatalf("total = %s", got)
	}
	if got := c.Subtotal(99); !got.IsZero() {
		t.Fatalf("subtotal of missing product = %s", got)
	}
	c.Remove(1)
	if got := c.Total(); !got.Equal(decimal.RequireFromString("1.20")) {
		t.Fatalf("total after remove = %s", got)
	}
}

func TestClearResetsDetails(t *testing.T) {
	c := New(ledger.KindSale)
	customer := uint(7)
	c.SetCounterparty(&customer)
	if err := c.SetPaymentMethod(model.PaymentWalletA); err != nil {
		t.Fatal(err)
	}
	if err := c.AddOrIncrement(product(1, 3, "5.00")); err != nil {
		t.Fatal(err)
	}

	c.Clear()

	if c.Len() != 0 || c.Counterparty() != nil {
		t.Fatalf("clear left lines or counterparty behind")
	}
	if c.PaymentMethod() != model.PaymentCash {
		t.Fatalf("payment method = %s, want CASH", c.PaymentMethod())
	}
}

func TestPurchaseCartRejectsPaymentMethod(t *testing.T) {
	c := New(ledger.KindPurchase)
	if err := c.SetPaymentMethod(model.PaymentCash); !errors.Is(err, ErrNoPayment) {
		t.Fatalf("expected ErrNoPayment, got %v", err)
	}
}

func TestRequest(t *testing.T) {
	c := New(ledger.KindSale)
	if _, err := c.Request("op"); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	p := product(4, 5, "10.00")
	for i := 0; i < 3; i++ {
		if err := c.AddOrIncrement(p); err != nil {
			t.Fatal(err)
		}
	}
	req, err := c.Request("op")
	if err != nil {
		t.Fatal(err)
	}
	if len(req.Lines) != 1 || req.Lines[0].Quantity != 3 || !req.Lines[0].UnitPrice.Equal(p.SalePrice) {
		t.Fatalf("unexpected lines %+v", req.Lines)
	}
	if req.PaymentMethod != model.PaymentCash || req.OperatorID != "op" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestMemoryStoreKeepsCartPerOperatorAndKind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	c := New(ledger.KindSale)
	if err := c.AddOrIncrement(product(1, 5, "10.00")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "op-1", c); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx, "op-1", ledger.KindSale)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Quantity(1) != 1 || !got.Total().Equal(decimal.RequireFromString("10")) {
		t.Fatalf("loaded cart differs: qty=%d total=%s", got.Quantity(1), got.Total())
	}

	other, _ := s.Load(ctx, "op-2", ledger.KindSale)
	if other.Len() != 0 {
		t.Fatalf("operators must not share carts")
	}
	purchase, _ := s.Load(ctx, "op-1", ledger.KindPurchase)
	if purchase.Len() != 0 || purchase.Kind() != ledger.KindPurchase {
		t.Fatalf("kinds must not share carts")
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	expired, _ := s.Load(ctx, "op-1", ledger.KindSale)
	if expired.Len() != 0 {
		t.Fatalf("expired cart was returned")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("BODEGA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BODEGA_TEST_REDIS_ADDR is not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	s := NewRedisStore(client, time.Minute)
	c := New(ledger.KindSale)
	if err := c.AddOrIncrement(product(1, 5, "10.00")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "redis-op", c); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "redis-op", ledger.KindSale)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Quantity(1) != 1 {
		t.Fatalf("quantity = %d", got.Quantity(1))
	}
	if err := s.Delete(ctx, "redis-op", ledger.KindSale); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = s.Load(ctx, "redis-op", ledger.KindSale)
	if got.Len() != 0 {
		t.Fatalf("cart survived delete")
	}
}

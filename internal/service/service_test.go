package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bodega-pos/internal/cart"
	"bodega-pos/internal/events"
	"bodega-pos/internal/ledger"
	"bodega-pos/internal/model"
	"bodega-pos/internal/repository"
	"bodega-pos/internal/repository/memory"
	"bodega-pos/internal/session"

	"github.com/shopspring/decimal"
)

const (
	rosaID   = "6f1c2b1e-3a4d-4e5f-8a9b-0c1d2e3f4a5b"
	carlosID = "0b7e4a52-9d1c-4f3e-a6b8-2c5d7e9f1a3b"
)

type stockFinder struct{ stock *memory.Stock }

func (f stockFinder) FindByID(id uint) (*model.Product, error) {
	p, ok := f.stock.Product(id)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ledger.ErrNotFound)
	}
	return &p, nil
}

type fixture struct {
	stock     *memory.Stock
	sales     *memory.LedgerStore
	purchases *memory.LedgerStore
	recorder  *events.Recorder
	tx        TransactionService
	carts     CartService
	rosa      *session.Session
}

func product(id uint, name string, stock int, sale, purchase string) model.Product {
	return model.Product{
		BaseModel:     model.BaseModel{ID: id},
		Name:          name,
		Stock:         stock,
		SalePrice:     decimal.RequireFromString(sale),
		PurchasePrice: decimal.RequireFromString(purchase),
	}
}

func newFixture(t *testing.T, products ...model.Product) *fixture {
	t.Helper()
	f := &fixture{stock: memory.NewStock(products...), recorder: &events.Recorder{}}
	f.sales = memory.NewLedgerStore(ledger.KindSale, f.stock)
	f.purchases = memory.NewLedgerStore(ledger.KindPurchase, f.stock)
	f.sales.AddOperator(rosaID, "Rosa", "Quispe")
	f.tx = NewTransactionService(
		ledger.New(ledger.KindSale, f.sales, f.stock),
		ledger.New(ledger.KindPurchase, f.purchases, f.stock),
		f.recorder,
	)
	f.carts = NewCartService(cart.NewMemoryStore(time.Hour), stockFinder{f.stock}, f.tx)

	sess := session.New()
	if err := sess.Load(session.Profile{ID: rosaID, FirstName: "Rosa", Role: model.RoleSeller}); err != nil {
		t.Fatalf("session: %v", err)
	}
	f.rosa = sess
	return f
}

func (f *fixture) stockOf(t *testing.T, id uint) int {
	t.Helper()
	p, ok := f.stock.Product(id)
	if !ok {
		t.Fatalf("product %d missing", id)
	}
	return p.Stock
}

func TestCreateUsesSessionOperator(t *testing.T) {
	f := newFixture(t, product(1, "Inca Kola", 5, "2.50", "1.80"))
	ctx := context.Background()

	res := f.tx.Create(ctx, ledger.KindSale, f.rosa, ledger.CreateRequest{
		OperatorID: carlosID,
		Lines:      []ledger.LineInput{{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("2.50")}},
	})
	if !res.Success {
		t.Fatalf("create: %v", res.Err)
	}
	if res.Data.OperatorID != rosaID {
		t.Fatalf("operator = %s, want the session operator", res.Data.OperatorID)
	}

	evs := f.recorder.Events()
	if len(evs) != 1 || evs[0].Type != events.TransactionCreated {
		t.Fatalf("events = %+v", evs)
	}

	del := f.tx.Delete(ctx, ledger.KindSale, f.rosa, res.Data.ID)
	if !del.Success {
		t.Fatalf("delete: %v", del.Err)
	}
	if got := f.stockOf(t, 1); got != 5 {
		t.Fatalf("stock = %d", got)
	}
	if evs := f.recorder.Events(); len(evs) != 2 || evs[1].Type != events.TransactionDeleted {
		t.Fatalf("events = %+v", evs)
	}
}

func TestWritesNeedASession(t *testing.T) {
	f := newFixture(t, product(1, "Inca Kola", 5, "2.50", "1.80"))
	req := ledger.CreateRequest{Lines: []ledger.LineInput{{ProductID: 1, Quantity: 1}}}

	for name, sess := range map[string]*session.Session{"nil": nil, "empty": session.New()} {
		t.Run(name, func(t *testing.T) {
			res := f.tx.Create(context.Background(), ledger.KindSale, sess, req)
			if !res.Is(ledger.ValidationError) || !errors.Is(res.Err, session.ErrNoSession) {
				t.Fatalf("want VALIDATION/no session, got %+v", res.Err)
			}
		})
	}
	if res := f.tx.Delete(context.Background(), ledger.KindSale, nil, 1); !res.Is(ledger.ValidationError) {
		t.Fatalf("delete without session: %+v", res.Err)
	}
	if len(f.recorder.Events()) != 0 {
		t.Fatalf("nothing should be published")
	}
}

func TestUnknownKind(t *testing.T) {
	f := newFixture(t)
	if res := f.tx.List(context.Background(), "RETURN"); !res.Is(ledger.ValidationError) {
		t.Fatalf("List: %+v", res.Err)
	}
	if _, err := f.carts.Get(context.Background(), rosaID, "RETURN"); ledger.KindOf(err) != ledger.ValidationError {
		t.Fatalf("cart Get: %v", err)
	}
}

func TestSearchTransactions(t *testing.T) {
	f := newFixture(t, product(1, "Inca Kola", 50, "2.50", "1.80"))
	ctx := context.Background()
	f.sales.AddCounterparty(3, "Juan Perez", "45879631")
	three := uint(3)

	for _, cp := range []*uint{nil, &three} {
		res := f.tx.Create(ctx, ledger.KindSale, f.rosa, ledger.CreateRequest{
			CounterpartyID: cp,
			Lines:          []ledger.LineInput{{ProductID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("2.50")}},
		})
		if !res.Success {
			t.Fatalf("create: %v", res.Err)
		}
	}

	if res := f.tx.Search(ctx, ledger.KindSale, "perez"); !res.Success || len(res.Data) != 1 {
		t.Fatalf("search perez = %+v", res)
	}
	if res := f.tx.Search(ctx, ledger.KindSale, "quispe"); !res.Success || len(res.Data) != 2 {
		t.Fatalf("search quispe = %+v", res)
	}
}

func TestCartCheckout(t *testing.T) {
	f := newFixture(t, product(1, "Inca Kola", 5, "10.00", "7.00"), product(2, "Galleta Soda", 0, "0.80", "0.50"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.carts.AddItem(ctx, rosaID, ledger.KindSale, 1); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}
	if _, err := f.carts.AddItem(ctx, rosaID, ledger.KindSale, 2); !errors.Is(err, cart.ErrStockExceeded) {
		t.Fatalf("out of stock add: %v", err)
	}
	if _, err := f.carts.AddItem(ctx, rosaID, ledger.KindSale, 99); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("unknown product add: %v", err)
	}

	c, err := f.carts.SetDetails(ctx, rosaID, ledger.KindSale, nil, model.PaymentWalletB)
	if err != nil {
		t.Fatalf("SetDetails: %v", err)
	}
	if !c.Total().Equal(decimal.RequireFromString("30")) {
		t.Fatalf("cart total = %s", c.Total())
	}

	res := f.carts.Checkout(ctx, f.rosa, ledger.KindSale)
	if !res.Success {
		t.Fatalf("checkout: %v", res.Err)
	}
	if res.Data.PaymentMethod != model.PaymentWalletB || !res.Data.Total.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("recorded %+v", res.Data)
	}
	if got := f.stockOf(t, 1); got != 2 {
		t.Fatalf("stock = %d, want 2", got)
	}

	after, err := f.carts.Get(ctx, rosaID, ledger.KindSale)
	if err != nil || after.Len() != 0 || after.PaymentMethod() != model.PaymentCash {
		t.Fatalf("cart should be cleared after checkout: %+v, %v", after, err)
	}

	if empty := f.carts.Checkout(ctx, f.rosa, ledger.KindSale); !empty.Is(ledger.ValidationError) {
		t.Fatalf("empty checkout: %+v", empty.Err)
	}
}

func TestFailedCheckoutKeepsCart(t *testing.T) {
	f := newFixture(t, product(1, "Leche Gloria", 2, "4.50", "3.80"))
	ctx := context.Background()

	f.carts.AddItem(ctx, rosaID, ledger.KindSale, 1)
	if _, err := f.carts.AddItem(ctx, rosaID, ledger.KindSale, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// another terminal sells one unit in the meantime
	other := f.tx.Create(ctx, ledger.KindSale, f.rosa, ledger.CreateRequest{
		Lines: []ledger.LineInput{{ProductID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("4.50")}},
	})
	if !other.Success {
		t.Fatalf("other sale: %v", other.Err)
	}

	res := f.carts.Checkout(ctx, f.rosa, ledger.KindSale)
	if !res.Is(ledger.StockExceededError) {
		t.Fatalf("want STOCK_EXCEEDED, got %+v", res.Err)
	}
	c, _ := f.carts.Get(ctx, rosaID, ledger.KindSale)
	if c.Quantity(1) != 2 {
		t.Fatalf("cart should be kept, quantity = %d", c.Quantity(1))
	}
	if got := f.stockOf(t, 1); got != 1 {
		t.Fatalf("stock = %d", got)
	}
}

func TestPurchaseCart(t *testing.T) {
	f := newFixture(t, product(1, "Arroz Costeno", 0, "4.20", "3.40"))
	ctx := context.Background()

	if _, err := f.carts.AddItem(ctx, rosaID, ledger.KindPurchase, 1); err != nil {
		t.Fatalf("purchase carts take out-of-stock products: %v", err)
	}
	c, err := f.carts.SetQuantity(ctx, rosaID, ledger.KindPurchase, 1, 40)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if !c.Total().Equal(decimal.RequireFromString("136")) {
		t.Fatalf("total = %s", c.Total())
	}
	if _, err := f.carts.SetDetails(ctx, rosaID, ledger.KindPurchase, nil, model.PaymentCash); !errors.Is(err, cart.ErrNoPayment) {
		t.Fatalf("purchase payment: %v", err)
	}
	if _, err := f.carts.RemoveItem(ctx, rosaID, ledger.KindPurchase, 7); !errors.Is(err, cart.ErrNotInCart) {
		t.Fatalf("remove missing: %v", err)
	}

	res := f.carts.Checkout(ctx, f.rosa, ledger.KindPurchase)
	if !res.Success {
		t.Fatalf("checkout: %v", res.Err)
	}
	if got := f.stockOf(t, 1); got != 40 {
		t.Fatalf("stock = %d", got)
	}

	// the sale cart of the same operator is independent
	if _, err := f.carts.AddItem(ctx, rosaID, ledger.KindSale, 1); err != nil {
		t.Fatalf("sale cart: %v", err)
	}
	if c, _ := f.carts.Clear(ctx, rosaID, ledger.KindSale); c.Len() != 0 {
		t.Fatalf("Clear left %d items", c.Len())
	}
}

func TestCartLocksAreReleased(t *testing.T) {
	f := newFixture(t, product(1, "Pan Frances", 50, "0.20", "0.12"))
	ctx := context.Background()
	operators := []string{rosaID, carlosID, "3c9d8e7f-6a5b-4c3d-9e2f-1a0b9c8d7e6f"}

	var wg sync.WaitGroup
	for _, op := range operators {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(op string) {
				defer wg.Done()
				if _, err := f.carts.AddItem(ctx, op, ledger.KindSale, 1); err != nil {
					t.Errorf("AddItem %s: %v", op, err)
				}
			}(op)
		}
	}
	wg.Wait()

	for _, op := range operators {
		c, err := f.carts.Get(ctx, op, ledger.KindSale)
		if err != nil || c.Quantity(1) != 10 {
			t.Fatalf("cart of %s = %+v, %v", op, c, err)
		}
	}
	if res := f.carts.Checkout(ctx, f.rosa, ledger.KindSale); !res.Success {
		t.Fatalf("checkout: %v", res.Err)
	}

	svc := f.carts.(*cartService)
	svc.mu.Lock()
	left := len(svc.locks)
	svc.mu.Unlock()
	if left != 0 {
		t.Fatalf("%d cart locks still held after every call returned", left)
	}
}

type fakeDashboardRepo struct {
	threshold int
	from, to  time.Time
}

func (r *fakeDashboardRepo) GetStockMovement(start, end time.Time) ([]repository.StockMovementData, error) {
	r.from, r.to = start, end
	return []repository.StockMovementData{}, nil
}

func (r *fakeDashboardRepo) GetDashboardStats(threshold int) (*repository.DashboardStats, error) {
	r.threshold = threshold
	return &repository.DashboardStats{}, nil
}

func TestDashboardReports(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)
	f := newFixture(t, product(1, "Inca Kola", 100, "2.50", "1.80"))
	ctx := context.Background()

	clockAt := time.Date(2026, 3, 14, 8, 0, 0, 0, lima)
	sales := ledger.New(ledger.KindSale, f.sales, f.stock, ledger.WithClock(func() time.Time { return clockAt }))
	f.tx = NewTransactionService(sales, ledger.New(ledger.KindPurchase, f.purchases, f.stock), f.recorder)

	record := func(qty int, pm model.PaymentMethod) {
		t.Helper()
		res := f.tx.Create(ctx, ledger.KindSale, f.rosa, ledger.CreateRequest{
			Lines:         []ledger.LineInput{{ProductID: 1, Quantity: qty, UnitPrice: decimal.RequireFromString("2.50")}},
			PaymentMethod: pm,
		})
		if !res.Success {
			t.Fatalf("create: %v", res.Err)
		}
	}
	record(4, model.PaymentCash) // yesterday for the report below
	clockAt = time.Date(2026, 3, 15, 9, 0, 0, 0, lima)
	record(2, model.PaymentWalletA)
	record(1, model.PaymentCash)

	repo := &fakeDashboardRepo{}
	svc := NewDashboardService(repo, f.tx, 10, lima).(*dashboardService)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 20, 0, 0, 0, lima) }

	today := svc.Today(ctx)
	if !today.Success {
		t.Fatalf("Today: %v", today.Err)
	}
	if today.Data.Date != "2026-03-15" || today.Data.Summary.Count != 2 || !today.Data.Summary.Total.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("today = %+v", today.Data)
	}
	if !today.Data.Payment.Digital.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("today digital = %s", today.Data.Payment.Digital)
	}

	sum := svc.Summary(ctx, ledger.KindSale)
	if !sum.Success || sum.Data.Count != 3 || !sum.Data.Average.Equal(decimal.RequireFromString("5.83")) {
		t.Fatalf("summary = %+v", sum)
	}
	if empty := svc.Summary(ctx, ledger.KindPurchase); !empty.Success || empty.Data.Count != 0 || !empty.Data.Average.IsZero() {
		t.Fatalf("empty summary = %+v", empty)
	}
	split := svc.PaymentSplit(ctx)
	if !split.Success || !split.Data.Cash.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("split = %+v", split)
	}

	if _, err := svc.GetDashboardStats(); err != nil || repo.threshold != 10 {
		t.Fatalf("stats threshold = %d, %v", repo.threshold, err)
	}
	if _, err := svc.GetStockMovement(0); err != nil || repo.to.Sub(repo.from) != 7*24*time.Hour {
		t.Fatalf("default window = %v", repo.to.Sub(repo.from))
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

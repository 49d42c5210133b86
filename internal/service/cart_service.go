package service

import (
	"context"
	"log"
	"sync"

	"bodega-pos/internal/cart"
	"bodega-pos/internal/ledger"
	"bodega-pos/internal/model"
	"bodega-pos/internal/repository"
	"bodega-pos/internal/session"
)

// ProductFinder loads the product snapshot a cart line is priced from.
type ProductFinder interface {
	FindByID(id uint) (*model.Product, error)
}

// CartService keeps one sale cart and one purchase cart per operator.
type CartService interface {
	Get(ctx context.Context, operatorID string, kind ledger.Kind) (*cart.Cart, error)
	AddItem(ctx context.Context, operatorID string, kind ledger.Kind, productID uint) (*cart.Cart, error)
	SetQuantity(ctx context.Context, operatorID string, kind ledger.Kind, productID uint, qty int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, operatorID string, kind ledger.Kind, productID uint) (*cart.Cart, error)
	Clear(ctx context.Context, operatorID string, kind ledger.Kind) (*cart.Cart, error)
	SetDetails(ctx context.Context, operatorID string, kind ledger.Kind, counterpartyID *uint, method model.PaymentMethod) (*cart.Cart, error)
	// Checkout commits the cart. The cart is cleared only when the ledger
	// accepted it.
	Checkout(ctx context.Context, sess *session.Session, kind ledger.Kind) ledger.Result[*ledger.Transaction]
}

type cartService struct {
	store        cart.Store
	products     ProductFinder
	transactions TransactionService

	mu    sync.Mutex
	locks map[string]*cartLock
}

// cartLock is dropped from the map when its last holder releases it.
type cartLock struct {
	mu   sync.Mutex
	refs int
}

func NewCartService(store cart.Store, products ProductFinder, transactions TransactionService) CartService {
	return &cartService{
		store:        store,
		products:     products,
		transactions: transactions,
		locks:        make(map[string]*cartLock),
	}
}

// lock serializes load-modify-save of one operator's cart.
func (s *cartService) lock(operatorID string, kind ledger.Kind) func() {
	k := operatorID + ":" + string(kind)
	s.mu.Lock()
	l, ok := s.locks[k]
	if !ok {
		l = &cartLock{}
		s.locks[k] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, k)
		}
		s.mu.Unlock()
	}
}

func (s *cartService) mutate(ctx context.Context, operatorID string, kind ledger.Kind, fn func(*cart.Cart) error) (*cart.Cart, error) {
	if !kind.Valid() {
		return nil, ledger.NewError(ledger.ValidationError, "unknown transaction kind %q", kind)
	}
	unlock := s.lock(operatorID, kind)
	defer unlock()

	c, err := s.store.Load(ctx, operatorID, kind)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return c, err
	}
	if err := s.store.Save(ctx, operatorID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *cartService) Get(ctx context.Context, operatorID string, kind ledger.Kind) (*cart.Cart, error) {
	if !kind.Valid() {
		return nil, ledger.NewError(ledger.ValidationError, "unknown transaction kind %q", kind)
	}
	return s.store.Load(ctx, operatorID, kind)
}

func (s *cartService) AddItem(ctx context.Context, operatorID string, kind ledger.Kind, productID uint) (*cart.Cart, error) {
	product, err := s.products.FindByID(productID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.mutate(ctx, operatorID, kind, func(c *cart.Cart) error {
		return c.AddOrIncrement(*product)
	})
}

func (s *cartService) SetQuantity(ctx context.Context, operatorID string, kind ledger.Kind, productID uint, qty int) (*cart.Cart, error) {
	return s.mutate(ctx, operatorID, kind, func(c *cart.Cart) error {
		return c.SetQuantity(productID, qty)
	})
}

func (s *cartService) RemoveItem(ctx context.Context, operatorID string, kind ledger.Kind, productID uint) (*cart.Cart, error) {
	return s.mutate(ctx, operatorID, kind, func(c *cart.Cart) error {
		if c.Quantity(productID) == 0 {
			return cart.ErrNotInCart
		}
		c.Remove(productID)
		return nil
	})
}

func (s *cartService) Clear(ctx context.Context, operatorID string, kind ledger.Kind) (*cart.Cart, error) {
	return s.mutate(ctx, operatorID, kind, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

func (s *cartService) SetDetails(ctx context.Context, operatorID string, kind ledger.Kind, counterpartyID *uint, method model.PaymentMethod) (*cart.Cart, error) {
	return s.mutate(ctx, operatorID, kind, func(c *cart.Cart) error {
		if method != "" {
			if err := c.SetPaymentMethod(method); err != nil {
				return err
			}
		}
		c.SetCounterparty(counterpartyID)
		return nil
	})
}

func (s *cartService) Checkout(ctx context.Context, sess *session.Session, kind ledger.Kind) ledger.Result[*ledger.Transaction] {
	operatorID, oerr := operatorOf(sess)
	if oerr != nil {
		return ledger.Fail[*ledger.Transaction](oerr)
	}
	if !kind.Valid() {
		return ledger.Fail[*ledger.Transaction](ledger.NewError(ledger.ValidationError, "unknown transaction kind %q", kind))
	}

	unlock := s.lock(operatorID, kind)
	defer unlock()

	c, err := s.store.Load(ctx, operatorID, kind)
	if err != nil {
		return ledger.Fail[*ledger.Transaction](&ledger.Error{Kind: ledger.StorageError, Message: "could not load cart: " + err.Error(), Err: err})
	}
	req, err := c.Request(operatorID)
	if err != nil {
		return ledger.Fail[*ledger.Transaction](&ledger.Error{Kind: ledger.ValidationError, Message: err.Error(), Err: err})
	}

	res := s.transactions.Create(ctx, kind, sess, req)
	if !res.Success {
		return res
	}

	if err := s.store.Delete(ctx, operatorID, kind); err != nil {
		log.Printf("Warning: %s %d recorded but cart of %s not cleared: %v", kind, res.Data.ID, operatorID, err)
	}
	return res
}

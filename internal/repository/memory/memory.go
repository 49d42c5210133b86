// Package memory keeps ledger state in process maps. It backs the unit tests
// of the ledger, cart and services.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bodega-pos/internal/ledger"
	"bodega-pos/internal/model"
)

// Stock is a product table reduced to what the ledger touches.
type Stock struct {
	mu       sync.RWMutex
	products map[uint]model.Product

	// AfterGet runs outside the lock after every GetStock read.
	AfterGet func(productID uint)
	// FailAdd and FailSet make AddStock and SetStock fail for a product.
	FailAdd map[uint]error
	FailSet map[uint]error
}

func NewStock(products ...model.Product) *Stock {
	s := &Stock{
		products: make(map[uint]model.Product),
		FailAdd:  make(map[uint]error),
		FailSet:  make(map[uint]error),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *Stock) Put(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Stock) Product(id uint) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Stock) GetStock(_ context.Context, productID uint) (int, error) {
	s.mu.RLock()
	p, ok := s.products[productID]
	s.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("product %d: %w", productID, ledger.ErrNotFound)
	}
	if s.AfterGet != nil {
		s.AfterGet(productID)
	}
	return p.Stock, nil
}

func (s *Stock) SetStock(_ context.Context, productID uint, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailSet[productID]; err != nil {
		return err
	}
	p, ok := s.products[productID]
	if !ok {
		return fmt.Errorf("product %d: %w", productID, ledger.ErrNotFound)
	}
	p.Stock = stock
	s.products[productID] = p
	return nil
}

func (s *Stock) AddStock(_ context.Context, productID uint, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailAdd[productID]; err != nil {
		return 0, err
	}
	p, ok := s.products[productID]
	if !ok {
		return 0, fmt.Errorf("product %d: %w", productID, ledger.ErrNotFound)
	}
	if p.Stock+delta < 0 {
		return p.Stock, fmt.Errorf("product %d has %d: %w", productID, p.Stock, ledger.ErrInsufficientStock)
	}
	p.Stock += delta
	s.products[productID] = p
	return p.Stock, nil
}

type party struct {
	name  string
	taxID string
}

type operator struct {
	first string
	last  string
}

// LedgerStore holds the headers and lines of one transaction kind.
type LedgerStore struct {
	mu      sync.RWMutex
	kind    ledger.Kind
	stock   *Stock
	nextID  uint
	nextLn  uint
	headers map[uint]ledger.Transaction
	lines   map[uint][]ledger.Line

	parties   map[uint]party
	operators map[string]operator

	// Failure injection for compensation paths.
	FailInsertLines  error
	FailDeleteHeader error
	FailDeleteLines  error
}

func NewLedgerStore(kind ledger.Kind, stock *Stock) *LedgerStore {
	return &LedgerStore{
		kind:      kind,
		stock:     stock,
		headers:   make(map[uint]ledger.Transaction),
		lines:     make(map[uint][]ledger.Line),
		parties:   make(map[uint]party),
		operators: make(map[string]operator),
	}
}

// AddCounterparty registers the customer or supplier names used for enrichment.
func (s *LedgerStore) AddCounterparty(id uint, name, taxID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parties[id] = party{name: name, taxID: taxID}
}

func (s *LedgerStore) AddOperator(id, firstName, lastName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operators[id] = operator{first: firstName, last: lastName}
}

func (s *LedgerStore) InsertHeader(_ context.Context, tx *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.CounterpartyID != nil {
		if _, ok := s.parties[*tx.CounterpartyID]; !ok {
			return fmt.Errorf("counterparty %d: %w", *tx.CounterpartyID, ledger.ErrNotFound)
		}
	}
	s.nextID++
	tx.ID = s.nextID
	h := *tx
	h.Lines = nil
	h.StockAfter = nil
	s.headers[h.ID] = h
	return nil
}

func (s *LedgerStore) DeleteHeader(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDeleteHeader != nil {
		return s.FailDeleteHeader
	}
	if _, ok := s.headers[id]; !ok {
		return fmt.Errorf("header %d: %w", id, ledger.ErrNotFound)
	}
	if len(s.lines[id]) > 0 {
		return fmt.Errorf("header %d still has lines", id)
	}
	delete(s.headers, id)
	return nil
}

// InsertLines is all-or-nothing and rejects unknown products.
func (s *LedgerStore) InsertLines(_ context.Context, headerID uint, lines []ledger.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsertLines != nil {
		return s.FailInsertLines
	}
	if _, ok := s.headers[headerID]; !ok {
		return fmt.Errorf("header %d: %w", headerID, ledger.ErrNotFound)
	}
	for _, ln := range lines {
		if _, ok := s.stock.Product(ln.ProductID); !ok {
			return fmt.Errorf("product %d: %w", ln.ProductID, ledger.ErrNotFound)
		}
	}
	stored := make([]ledger.Line, 0, len(lines))
	for i := range lines {
		s.nextLn++
		lines[i].ID = s.nextLn
		lines[i].HeaderID = headerID
		stored = append(stored, lines[i])
	}
	s.lines[headerID] = append(s.lines[headerID], stored...)
	return nil
}

func (s *LedgerStore) FindLines(_ context.Context, headerID uint) ([]ledger.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enrichLines(s.lines[headerID]), nil
}

func (s *LedgerStore) DeleteLines(_ context.Context, headerID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDeleteLines != nil {
		return s.FailDeleteLines
	}
	delete(s.lines, headerID)
	return nil
}

func (s *LedgerStore) FindByID(_ context.Context, id uint) (*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.headers[id]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", s.kind, id, ledger.ErrNotFound)
	}
	tx := s.enrich(h)
	tx.Lines = s.enrichLines(s.lines[id])
	return &tx, nil
}

func (s *LedgerStore) FindAll(_ context.Context) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Transaction, 0, len(s.headers))
	for _, h := range s.headers {
		out = append(out, s.enrich(h))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// Counts reports stored headers and lines.
func (s *LedgerStore) Counts() (headers, lines int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ls := range s.lines {
		lines += len(ls)
	}
	return len(s.headers), lines
}

func (s *LedgerStore) enrich(h ledger.Transaction) ledger.Transaction {
	if h.CounterpartyID != nil {
		if p, ok := s.parties[*h.CounterpartyID]; ok {
			h.CounterpartyName = p.name
			h.CounterpartyTaxID = p.taxID
		}
	}
	if op, ok := s.operators[h.OperatorID]; ok {
		h.OperatorFirstName = op.first
		h.OperatorLastName = op.last
	}
	return h
}

func (s *LedgerStore) enrichLines(lines []ledger.Line) []ledger.Line {
	out := make([]ledger.Line, len(lines))
	for i, ln := range lines {
		if p, ok := s.stock.Product(ln.ProductID); ok {
			ln.ProductName = p.Name
		}
		out[i] = ln
	}
	return out
}

package ledger

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Store persists the headers and lines of one transaction kind.
type Store interface {
	// InsertHeader stores the header and assigns tx.ID.
	InsertHeader(ctx context.Context, tx *Transaction) error
	DeleteHeader(ctx context.Context, id uint) error
	// InsertLines stores all lines in one statement and assigns their IDs.
	InsertLines(ctx context.Context, headerID uint, lines []Line) error
	FindLines(ctx context.Context, headerID uint) ([]Line, error)
	DeleteLines(ctx context.Context, headerID uint) error
	// FindByID returns the header enriched with counterparty, operator and lines.
	FindByID(ctx context.Context, id uint) (*Transaction, error)
	// FindAll returns enriched headers, most recent first, without lines.
	FindAll(ctx context.Context) ([]Transaction, error)
}

// StockStore is the quantity-on-hand counter of products.
type StockStore interface {
	GetStock(ctx context.Context, productID uint) (int, error)
	SetStock(ctx context.Context, productID uint, stock int) error
	// AddStock applies delta in one step and refuses results below zero
	// with ErrInsufficientStock. It returns the new stock.
	AddStock(ctx context.Context, productID uint, delta int) (int, error)
}

// Transactor is implemented by stores able to run several steps atomically.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store, StockStore) error) error
}

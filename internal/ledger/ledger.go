package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bodega-pos/internal/model"
	"bodega-pos/pkg/validator"

	"github.com/shopspring/decimal"
)

// StockMode selects how a line's quantity reaches the product counter.
type StockMode string

const (
	// StockAtomic applies each delta in one guarded statement.
	StockAtomic StockMode = "atomic"
	// StockNaive reads the current value and writes the new one.
	// Concurrent writers can lose updates and drive stock negative.
	StockNaive StockMode = "naive"
)

func (m StockMode) Valid() bool {
	return m == StockAtomic || m == StockNaive
}

type Options struct {
	StockMode StockMode
	// CheckStock re-validates availability before any write.
	CheckStock bool
	// Transactional runs every step in one database transaction when the
	// store implements Transactor. Otherwise the saga path is used.
	Transactional bool
	Clock         func() time.Time
}

type Option func(*Options)

func WithStockMode(mode StockMode) Option {
	return func(o *Options) { o.StockMode = mode }
}

func WithStockCheck(enabled bool) Option {
	return func(o *Options) { o.CheckStock = enabled }
}

func WithTransactions(enabled bool) Option {
	return func(o *Options) { o.Transactional = enabled }
}

func WithClock(clock func() time.Time) Option {
	return func(o *Options) { o.Clock = clock }
}

// Ledger records transactions of one kind and applies their stock effect.
type Ledger struct {
	kind  Kind
	store Store
	stock StockStore
	opts  Options
}

func New(kind Kind, store Store, stock StockStore, opts ...Option) *Ledger {
	o := Options{
		StockMode:  StockAtomic,
		CheckStock: true,
		Clock:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.StockMode.Valid() {
		o.StockMode = StockAtomic
	}
	return &Ledger{kind: kind, store: store, stock: stock, opts: o}
}

func (l *Ledger) Kind() Kind {
	return l.kind
}

// Create records header, lines and stock deltas, in that order.
func (l *Ledger) Create(ctx context.Context, req CreateRequest) Result[*Transaction] {
	if verr := l.validate(&req); verr != nil {
		return Fail[*Transaction](verr)
	}

	tx := l.build(req)

	if l.opts.CheckStock && l.kind.Direction() == Outbound {
		if serr := l.checkAvailable(ctx, l.stock, tx.Lines); serr != nil {
			return Fail[*Transaction](serr)
		}
	}

	if t, ok := l.store.(Transactor); ok && l.opts.Transactional {
		return l.createInTx(ctx, t, tx)
	}
	return l.createSaga(ctx, tx)
}

func (l *Ledger) createInTx(ctx context.Context, t Transactor, tx *Transaction) Result[*Transaction] {
	step := "header"
	err := t.InTx(ctx, func(s Store, st StockStore) error {
		if err := s.InsertHeader(ctx, tx); err != nil {
			return err
		}
		step = "lines"
		if err := s.InsertLines(ctx, tx.ID, tx.Lines); err != nil {
			return err
		}
		step = "stock"
		for _, ln := range tx.Lines {
			after, err := l.adjust(ctx, st, ln.ProductID, l.kind.Direction().Delta(ln.Quantity))
			if err != nil {
				return fmt.Errorf("product %d: %w", ln.ProductID, err)
			}
			tx.StockAfter[ln.ProductID] = after
		}
		return nil
	})
	if err != nil {
		return Fail[*Transaction](classify(err, "could not record %s (%s step, rolled back)", l.kind.label(), step))
	}
	return OK(tx)
}

func (l *Ledger) createSaga(ctx context.Context, tx *Transaction) Result[*Transaction] {
	if err := l.store.InsertHeader(ctx, tx); err != nil {
		return Fail[*Transaction](classify(err, "could not record %s header", l.kind.label()))
	}

	if err := l.store.InsertLines(ctx, tx.ID, tx.Lines); err != nil {
		msg := fmt.Sprintf("could not record %s lines: %v", l.kind.label(), err)
		if cerr := l.store.DeleteHeader(ctx, tx.ID); cerr != nil {
			return Fail[*Transaction](&Error{
				Kind:    PartialFailure,
				Message: fmt.Sprintf("%s; header %d left behind: %v", msg, tx.ID, cerr),
				Err:     err,
			})
		}
		return Fail[*Transaction](&Error{Kind: PartialFailure, Message: msg + "; header removed", Err: err})
	}

	applied := make([]Line, 0, len(tx.Lines))
	for _, ln := range tx.Lines {
		after, err := l.adjust(ctx, l.stock, ln.ProductID, l.kind.Direction().Delta(ln.Quantity))
		if err != nil {
			return Fail[*Transaction](l.compensateStock(ctx, tx, applied, ln.ProductID, err))
		}
		tx.StockAfter[ln.ProductID] = after
		applied = append(applied, ln)
	}

	return OK(tx)
}

// compensateStock undoes a create whose stock step failed. Naive mode keeps
// whatever was written; atomic mode reverses the applied deltas and removes
// lines and header.
func (l *Ledger) compensateStock(ctx context.Context, tx *Transaction, applied []Line, productID uint, cause error) *Error {
	msg := fmt.Sprintf("could not update stock of product %d for %s %d", productID, l.kind.label(), tx.ID)
	if l.opts.StockMode == StockNaive {
		return &Error{
			Kind:    PartialFailure,
			Message: fmt.Sprintf("%s: %v; %d of %d lines already applied, transaction kept", msg, cause, len(applied), len(tx.Lines)),
			Err:     cause,
		}
	}

	var leftovers []string
	for i := len(applied) - 1; i >= 0; i-- {
		ln := applied[i]
		if _, err := l.adjust(ctx, l.stock, ln.ProductID, -l.kind.Direction().Delta(ln.Quantity)); err != nil {
			leftovers = append(leftovers, fmt.Sprintf("stock of product %d not restored: %v", ln.ProductID, err))
		}
	}
	if len(leftovers) == 0 {
		if err := l.store.DeleteLines(ctx, tx.ID); err != nil {
			leftovers = append(leftovers, fmt.Sprintf("lines not removed: %v", err))
		} else if err := l.store.DeleteHeader(ctx, tx.ID); err != nil {
			leftovers = append(leftovers, fmt.Sprintf("header not removed: %v", err))
		}
	}
	if len(leftovers) > 0 {
		return &Error{
			Kind:    PartialFailure,
			Message: fmt.Sprintf("%s: %v; %s", msg, cause, strings.Join(leftovers, "; ")),
			Err:     cause,
		}
	}

	return classify(cause, "%s, transaction rolled back", msg)
}

// Delete reverses the stock effect of a transaction, then removes its lines
// and header. It returns the removed transaction.
func (l *Ledger) Delete(ctx context.Context, id uint) Result[*Transaction] {
	tx, err := l.store.FindByID(ctx, id)
	if err != nil {
		return Fail[*Transaction](classify(err, "%s %d", l.kind.label(), id))
	}

	lines, err := l.store.FindLines(ctx, id)
	if err != nil {
		return Fail[*Transaction](classify(err, "could not read lines of %s %d", l.kind.label(), id))
	}
	tx.Lines = lines
	tx.StockAfter = make(map[uint]int, len(lines))

	if l.opts.CheckStock && l.kind.Direction() == Inbound {
		if serr := l.checkAvailable(ctx, l.stock, lines); serr != nil {
			return Fail[*Transaction](serr)
		}
	}

	if t, ok := l.store.(Transactor); ok && l.opts.Transactional {
		err := t.InTx(ctx, func(s Store, st StockStore) error {
			return l.deleteSteps(ctx, s, st, tx, new(int))
		})
		if err != nil {
			return Fail[*Transaction](classify(err, "could not delete %s %d (rolled back)", l.kind.label(), id))
		}
		return OK(tx)
	}

	done := 0
	if err := l.deleteSteps(ctx, l.store, l.stock, tx, &done); err != nil {
		if done == 0 {
			return Fail[*Transaction](classify(err, "could not delete %s %d", l.kind.label(), id))
		}
		return Fail[*Transaction](&Error{
			Kind:    PartialFailure,
			Message: fmt.Sprintf("could not delete %s %d after %d completed steps: %v", l.kind.label(), id, done, err),
			Err:     err,
		})
	}
	return OK(tx)
}

// deleteSteps counts every committed step in done.
func (l *Ledger) deleteSteps(ctx context.Context, s Store, st StockStore, tx *Transaction, done *int) error {
	for _, ln := range tx.Lines {
		after, err := l.adjust(ctx, st, ln.ProductID, -l.kind.Direction().Delta(ln.Quantity))
		if err != nil {
			return fmt.Errorf("restore stock of product %d: %w", ln.ProductID, err)
		}
		tx.StockAfter[ln.ProductID] = after
		*done++
	}
	if err := s.DeleteLines(ctx, tx.ID); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}
	*done++
	if err := s.DeleteHeader(ctx, tx.ID); err != nil {
		return fmt.Errorf("delete header: %w", err)
	}
	*done++
	return nil
}

func (l *Ledger) Get(ctx context.Context, id uint) Result[*Transaction] {
	tx, err := l.store.FindByID(ctx, id)
	if err != nil {
		return Fail[*Transaction](classify(err, "%s %d", l.kind.label(), id))
	}
	return OK(tx)
}

// List returns the transactions of this kind, most recent first.
func (l *Ledger) List(ctx context.Context) Result[[]Transaction] {
	txs, err := l.store.FindAll(ctx)
	if err != nil {
		return Fail[[]Transaction](classify(err, "could not list %s transactions", l.kind.label()))
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return OK(txs)
}

func (l *Ledger) validate(req *CreateRequest) *Error {
	req.OperatorID = strings.TrimSpace(req.OperatorID)
	if err := validator.FirstError(req); err != nil {
		return &Error{Kind: ValidationError, Message: err.Error(), Err: err}
	}
	for i, ln := range req.Lines {
		if ln.UnitPrice.IsNegative() {
			return NewError(ValidationError, "line %d: unit price must not be negative", i+1)
		}
	}
	switch l.kind {
	case KindSale:
		if req.PaymentMethod == "" {
			req.PaymentMethod = model.PaymentCash
		}
	case KindPurchase:
		if req.PaymentMethod != "" {
			return NewError(ValidationError, "purchases do not take a payment method")
		}
	default:
		return NewError(ValidationError, "unknown transaction kind %q", l.kind)
	}
	return nil
}

func (l *Ledger) build(req CreateRequest) *Transaction {
	tx := &Transaction{
		Kind:           l.kind,
		CounterpartyID: req.CounterpartyID,
		OperatorID:     req.OperatorID,
		Date:           l.opts.Clock(),
		PaymentMethod:  req.PaymentMethod,
		Lines:          make([]Line, 0, len(req.Lines)),
		StockAfter:     make(map[uint]int, len(req.Lines)),
	}
	for _, in := range req.Lines {
		subtotal := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		tx.Lines = append(tx.Lines, Line{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Subtotal:  subtotal,
		})
	}
	tx.Total = LinesTotal(tx.Lines)
	return tx
}

// checkAvailable verifies every product can give up the summed quantity of
// its lines.
func (l *Ledger) checkAvailable(ctx context.Context, st StockStore, lines []Line) *Error {
	need := make(map[uint]int, len(lines))
	order := make([]uint, 0, len(lines))
	for _, ln := range lines {
		if _, seen := need[ln.ProductID]; !seen {
			order = append(order, ln.ProductID)
		}
		need[ln.ProductID] += ln.Quantity
	}
	for _, id := range order {
		have, err := st.GetStock(ctx, id)
		if err != nil {
			return classify(err, "product %d", id)
		}
		if have < need[id] {
			return &Error{
				Kind:    StockExceededError,
				Message: fmt.Sprintf("insufficient stock for product %d: have %d, need %d", id, have, need[id]),
				Err:     ErrInsufficientStock,
			}
		}
	}
	return nil
}

func (l *Ledger) adjust(ctx context.Context, st StockStore, productID uint, delta int) (int, error) {
	if l.opts.StockMode == StockNaive {
		current, err := st.GetStock(ctx, productID)
		if err != nil {
			return 0, err
		}
		next := current + delta
		if err := st.SetStock(ctx, productID, next); err != nil {
			return 0, err
		}
		return next, nil
	}
	return st.AddStock(ctx, productID, delta)
}

package service

import (
	"context"
	"log"
	"time"

	"bodega-pos/internal/events"
	"bodega-pos/internal/ledger"
	"bodega-pos/internal/reporting"
	"bodega-pos/internal/session"
)

// TransactionService routes sales and purchases to their ledger and
// announces every committed change.
type TransactionService interface {
	Create(ctx context.Context, kind ledger.Kind, sess *session.Session, req ledger.CreateRequest) ledger.Result[*ledger.Transaction]
	Delete(ctx context.Context, kind ledger.Kind, sess *session.Session, id uint) ledger.Result[*ledger.Transaction]
	Get(ctx context.Context, kind ledger.Kind, id uint) ledger.Result[*ledger.Transaction]
	List(ctx context.Context, kind ledger.Kind) ledger.Result[[]ledger.Transaction]
	Search(ctx context.Context, kind ledger.Kind, term string) ledger.Result[[]ledger.Transaction]
}

type transactionService struct {
	ledgers   map[ledger.Kind]*ledger.Ledger
	publisher events.Publisher
}

func NewTransactionService(sales, purchases *ledger.Ledger, publisher events.Publisher) TransactionService {
	return &transactionService{
		ledgers: map[ledger.Kind]*ledger.Ledger{
			ledger.KindSale:     sales,
			ledger.KindPurchase: purchases,
		},
		publisher: publisher,
	}
}

func (s *transactionService) ledgerFor(kind ledger.Kind) (*ledger.Ledger, *ledger.Error) {
	l, ok := s.ledgers[kind]
	if !ok || l == nil {
		return nil, ledger.NewError(ledger.ValidationError, "unknown transaction kind %q", kind)
	}
	return l, nil
}

func operatorOf(sess *session.Session) (string, *ledger.Error) {
	if sess == nil {
		return "", &ledger.Error{Kind: ledger.ValidationError, Message: session.ErrNoSession.Error(), Err: session.ErrNoSession}
	}
	id, err := sess.OperatorID()
	if err != nil {
		return "", &ledger.Error{Kind: ledger.ValidationError, Message: err.Error(), Err: err}
	}
	return id, nil
}

// Create records the transaction under the session's operator, whatever
// operator the request carried.
func (s *transactionService) Create(ctx context.Context, kind ledger.Kind, sess *session.Session, req ledger.CreateRequest) ledger.Result[*ledger.Transaction] {
	l, lerr := s.ledgerFor(kind)
	if lerr != nil {
		return ledger.Fail[*ledger.Transaction](lerr)
	}
	operatorID, oerr := operatorOf(sess)
	if oerr != nil {
		return ledger.Fail[*ledger.Transaction](oerr)
	}
	req.OperatorID = operatorID

	res := l.Create(ctx, req)
	if res.Success {
		s.announce(ctx, events.TransactionCreated, res.Data)
	}
	return res
}

func (s *transactionService) Delete(ctx context.Context, kind ledger.Kind, sess *session.Session, id uint) ledger.Result[*ledger.Transaction] {
	l, lerr := s.ledgerFor(kind)
	if lerr != nil {
		return ledger.Fail[*ledger.Transaction](lerr)
	}
	if _, oerr := operatorOf(sess); oerr != nil {
		return ledger.Fail[*ledger.Transaction](oerr)
	}

	res := l.Delete(ctx, id)
	if res.Success {
		s.announce(ctx, events.TransactionDeleted, res.Data)
	}
	return res
}

func (s *transactionService) Get(ctx context.Context, kind ledger.Kind, id uint) ledger.Result[*ledger.Transaction] {
	l, lerr := s.ledgerFor(kind)
	if lerr != nil {
		return ledger.Fail[*ledger.Transaction](lerr)
	}
	return l.Get(ctx, id)
}

func (s *transactionService) List(ctx context.Context, kind ledger.Kind) ledger.Result[[]ledger.Transaction] {
	l, lerr := s.ledgerFor(kind)
	if lerr != nil {
		return ledger.Fail[[]ledger.Transaction](lerr)
	}
	return l.List(ctx)
}

func (s *transactionService) Search(ctx context.Context, kind ledger.Kind, term string) ledger.Result[[]ledger.Transaction] {
	res := s.List(ctx, kind)
	if !res.Success {
		return res
	}
	return ledger.OK(reporting.Search(res.Data, term))
}

func (s *transactionService) announce(ctx context.Context, eventType string, tx *ledger.Transaction) {
	err := s.publisher.Publish(ctx, events.New(eventType, map[string]interface{}{
		"kind":        tx.Kind,
		"id":          tx.ID,
		"total":       tx.Total,
		"operator_id": tx.OperatorID,
		"stock":       tx.StockAfter,
		"at":          time.Now(),
	}))
	if err != nil {
		log.Printf("Warning: could not publish %s for %s %d: %v", eventType, tx.Kind, tx.ID, err)
	}
}

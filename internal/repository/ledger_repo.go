package repository

import (
	"context"
	"fmt"

	"bodega-pos/internal/ledger"
	"bodega-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository is a ledger.Store able to run inside a database transaction.
type LedgerRepository interface {
	ledger.Store
	ledger.Transactor
}

// NewLedgerRepo returns the header/line store of the given kind.
func NewLedgerRepo(db *gorm.DB, kind ledger.Kind) LedgerRepository {
	if kind == ledger.KindPurchase {
		return &purchaseRepo{db}
	}
	return &saleRepo{db}
}

// ensureProducts rejects lines whose product does not exist, before any row is written.
func ensureProducts(db *gorm.DB, lines []ledger.Line) error {
	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]bool, len(lines))
	for _, ln := range lines {
		if !seen[ln.ProductID] {
			seen[ln.ProductID] = true
			ids = append(ids, ln.ProductID)
		}
	}
	var found []uint
	if err := db.Model(&model.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	for _, id := range found {
		delete(seen, id)
	}
	for _, id := range ids {
		if seen[id] {
			return notFound("product", id)
		}
	}
	return nil
}

func productName(p *model.Product) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func operatorNames(op *model.UserProfile) (string, string) {
	if op == nil {
		return "", ""
	}
	return op.FirstName, op.LastName
}

func deleteHeader(db *gorm.DB, header interface{}, what string, id uint) error {
	res := db.Delete(header, id)
	if res.Error != nil {
		return translate(res.Error, ErrInUse)
	}
	if res.RowsAffected == 0 {
		return notFound(what, id)
	}
	return nil
}

// --- sales ---

type saleRepo struct {
	db *gorm.DB
}

func (r *saleRepo) InTx(ctx context.Context, fn func(ledger.Store, ledger.StockStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&saleRepo{tx}, NewStockRepo(tx))
	})
}

func (r *saleRepo) InsertHeader(ctx context.Context, t *ledger.Transaction) error {
	header := model.SaleHeader{
		CustomerID:    t.CounterpartyID,
		OperatorID:    t.OperatorID,
		Date:          t.Date,
		Total:         t.Total,
		PaymentMethod: t.PaymentMethod,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&header).Error; err != nil {
		return translate(err, ledger.ErrNotFound)
	}
	t.ID = header.ID
	return nil
}

func (r *saleRepo) DeleteHeader(ctx context.Context, id uint) error {
	return deleteHeader(r.db.WithContext(ctx), &model.SaleHeader{}, "sale", id)
}

func (r *saleRepo) InsertLines(ctx context.Context, headerID uint, lines []ledger.Line) error {
	db := r.db.WithContext(ctx)
	if err := ensureProducts(db, lines); err != nil {
		return err
	}
	rows := make([]model.SaleLine, len(lines))
	for i, ln := range lines {
		rows[i] = model.SaleLine{
			SaleHeaderID: headerID,
			ProductID:    ln.ProductID,
			Quantity:     ln.Quantity,
			UnitPrice:    ln.UnitPrice,
			Subtotal:     ln.Subtotal,
		}
	}
	if err := db.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return translate(err, ledger.ErrNotFound)
	}
	for i := range rows {
		lines[i].ID = rows[i].ID
		lines[i].HeaderID = headerID
	}
	return nil
}

func (r *saleRepo) FindLines(ctx context.Context, headerID uint) ([]ledger.Line, error) {
	var rows []model.SaleLine
	err := r.db.WithContext(ctx).Preload("Product").
		Where("sale_header_id = ?", headerID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return saleLines(rows), nil
}

func (r *saleRepo) DeleteLines(ctx context.Context, headerID uint) error {
	return r.db.WithContext(ctx).Where("sale_header_id = ?", headerID).Delete(&model.SaleLine{}).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uint) (*ledger.Transaction, error) {
	var header model.SaleHeader
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Operator").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Lines.Product").
		First(&header, id).Error
	if err != nil {
		return nil, translate(err, ErrInUse)
	}
	t := saleTransaction(header)
	t.Lines = saleLines(header.Lines)
	return &t, nil
}

func (r *saleRepo) FindAll(ctx context.Context) ([]ledger.Transaction, error) {
	var headers []model.SaleHeader
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Operator").
		Order("date DESC, id DESC").
		Find(&headers).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Transaction, len(headers))
	for i, h := range headers {
		out[i] = saleTransaction(h)
	}
	return out, nil
}

func saleTransaction(h model.SaleHeader) ledger.Transaction {
	t := ledger.Transaction{
		ID:             h.ID,
		Kind:           ledger.KindSale,
		CounterpartyID: h.CustomerID,
		OperatorID:     h.OperatorID,
		Date:           h.Date,
		Total:          h.Total,
		PaymentMethod:  h.PaymentMethod,
	}
	if h.Customer != nil {
		t.CounterpartyName = h.Customer.Name
		t.CounterpartyTaxID = h.Customer.NationalID
	}
	t.OperatorFirstName, t.OperatorLastName = operatorNames(h.Operator)
	return t
}

func saleLines(rows []model.SaleLine) []ledger.Line {
	out := make([]ledger.Line, len(rows))
	for i, row := range rows {
		out[i] = ledger.Line{
			ID:          row.ID,
			HeaderID:    row.SaleHeaderID,
			ProductID:   row.ProductID,
			ProductName: productName(row.Product),
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			Subtotal:    row.Subtotal,
		}
	}
	return out
}

// --- purchases ---

type purchaseRepo struct {
	db *gorm.DB
}

func (r *purchaseRepo) InTx(ctx context.Context, fn func(ledger.Store, ledger.StockStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&purchaseRepo{tx}, NewStockRepo(tx))
	})
}

func (r *purchaseRepo) InsertHeader(ctx context.Context, t *ledger.Transaction) error {
	if t.PaymentMethod != "" {
		return fmt.Errorf("purchases carry no payment method, got %s", t.PaymentMethod)
	}
	header := model.PurchaseHeader{
		SupplierID: t.CounterpartyID,
		OperatorID: t.OperatorID,
		Date:       t.Date,
		Total:      t.Total,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&header).Error; err != nil {
		return translate(err, ledger.ErrNotFound)
	}
	t.ID = header.ID
	return nil
}

func (r *purchaseRepo) DeleteHeader(ctx context.Context, id uint) error {
	return deleteHeader(r.db.WithContext(ctx), &model.PurchaseHeader{}, "purchase", id)
}

func (r *purchaseRepo) InsertLines(ctx context.Context, headerID uint, lines []ledger.Line) error {
	db := r.db.WithContext(ctx)
	if err := ensureProducts(db, lines); err != nil {
		return err
	}
	rows := make([]model.PurchaseLine, len(lines))
	for i, ln := range lines {
		rows[i] = model.PurchaseLine{
			PurchaseHeaderID: headerID,
			ProductID:        ln.ProductID,
			Quantity:         ln.Quantity,
			UnitPrice:        ln.UnitPrice,
			Subtotal:         ln.Subtotal,
		}
	}
	if err := db.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return translate(err, ledger.ErrNotFound)
	}
	for i := range rows {
		lines[i].ID = rows[i].ID
		lines[i].HeaderID = headerID
	}
	return nil
}

func (r *purchaseRepo) FindLines(ctx context.Context, headerID uint) ([]ledger.Line, error) {
	var rows []model.PurchaseLine
	err := r.db.WithContext(ctx).Preload("Product").
		Where("purchase_header_id = ?", headerID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return purchaseLines(rows), nil
}

func (r *purchaseRepo) DeleteLines(ctx context.Context, headerID uint) error {
	return r.db.WithContext(ctx).Where("purchase_header_id = ?", headerID).Delete(&model.PurchaseLine{}).Error
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uint) (*ledger.Transaction, error) {
	var header model.PurchaseHeader
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Operator").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Lines.Product").
		First(&header, id).Error
	if err != nil {
		return nil, translate(err, ErrInUse)
	}
	t := purchaseTransaction(header)
	t.Lines = purchaseLines(header.Lines)
	return &t, nil
}

func (r *purchaseRepo) FindAll(ctx context.Context) ([]ledger.Transaction, error) {
	var headers []model.PurchaseHeader
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Operator").
		Order("date DESC, id DESC").
		Find(&headers).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Transaction, len(headers))
	for i, h := range headers {
		out[i] = purchaseTransaction(h)
	}
	return out, nil
}

func purchaseTransaction(h model.PurchaseHeader) ledger.Transaction {
	t := ledger.Transaction{
		ID:             h.ID,
		Kind:           ledger.KindPurchase,
		CounterpartyID: h.SupplierID,
		OperatorID:     h.OperatorID,
		Date:           h.Date,
		Total:          h.Total,
	}
	if h.Supplier != nil {
		t.CounterpartyName = h.Supplier.Name
		t.CounterpartyTaxID = h.Supplier.TaxID
	}
	t.OperatorFirstName, t.OperatorLastName = operatorNames(h.Operator)
	return t
}

func purchaseLines(rows []model.PurchaseLine) []ledger.Line {
	out := make([]ledger.Line, len(rows))
	for i, row := range rows {
		out[i] = ledger.Line{
			ID:          row.ID,
			HeaderID:    row.PurchaseHeaderID,
			ProductID:   row.ProductID,
			ProductName: productName(row.Product),
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			Subtotal:    row.Subtotal,
		}
	}
	return out
}

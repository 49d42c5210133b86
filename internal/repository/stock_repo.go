package repository

import (
	"context"
	"fmt"

	"bodega-pos/internal/ledger"
	"bodega-pos/internal/model"

	"gorm.io/gorm"
)

type stockRepo struct {
	db *gorm.DB
}

// NewStockRepo exposes products.stock as the ledger's counter. Pass a
// transaction handle to run inside it.
func NewStockRepo(db *gorm.DB) ledger.StockStore {
	return &stockRepo{db}
}

func (r *stockRepo) GetStock(ctx context.Context, productID uint) (int, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Select("id", "stock").First(&product, productID).Error; err != nil {
		return 0, translate(err, ledger.ErrNotFound)
	}
	return product.Stock, nil
}

// SetStock writes an absolute value
func (r *stockRepo) SetStock(ctx context.Context, productID uint, stock int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", stock)
	if res.Error != nil {
		return translate(res.Error, ledger.ErrNotFound)
	}
	if res.RowsAffected == 0 {
		return notFound("product", productID)
	}
	return nil
}

// AddStock applies delta in a single guarded UPDATE so concurrent writers
// cannot lose updates or go below zero.
func (r *stockRepo) AddStock(ctx context.Context, productID uint, delta int) (int, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", productID, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return 0, translate(res.Error, ledger.ErrNotFound)
	}
	if res.RowsAffected == 0 {
		current, err := r.GetStock(ctx, productID)
		if err != nil {
			return 0, err
		}
		return current, fmt.Errorf("product %d has %d, change %d: %w", productID, current, delta, ledger.ErrInsufficientStock)
	}
	return r.GetStock(ctx, productID)
}

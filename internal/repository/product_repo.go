package repository

import (
	"bodega-pos/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
	Search(term string) ([]model.Product, error)
	LowStock(threshold int) ([]model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return translate(r.db.Create(product).Error, ErrInUse)
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, translate(err, ErrInUse)
	}
	return &product, nil
}

// Update never touches stock; only the ledger moves it.
func (r *productRepo) Update(product *model.Product) error {
	res := r.db.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Select("name", "category", "brand", "purchase_price", "sale_price", "unit", "updated_by").
		Updates(product)
	if res.Error != nil {
		return translate(res.Error, ErrInUse)
	}
	if res.RowsAffected == 0 {
		return notFound("product", product.ID)
	}
	return nil
}

// Delete fails with ErrInUse while any sale or purchase line references the product
func (r *productRepo) Delete(id uint) error {
	for _, line := range []interface{}{&model.SaleLine{}, &model.PurchaseLine{}} {
		var refs int64
		if err := r.db.Model(line).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}
	}
	res := r.db.Delete(&model.Product{}, id)
	if res.Error != nil {
		return translate(res.Error, ErrInUse)
	}
	if res.RowsAffected == 0 {
		return notFound("product", id)
	}
	return nil
}

// Search matches name, category or brand, case-insensitive
func (r *productRepo) Search(term string) ([]model.Product, error) {
	var products []model.Product
	like := likePattern(term)
	err := r.db.
		Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(brand) LIKE ?", like, like, like).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) LowStock(threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("stock < ?", threshold).Order("stock ASC, name ASC").Find(&products).Error
	return products, err
}

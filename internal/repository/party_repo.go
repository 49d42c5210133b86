package repository

import (
	"bodega-pos/internal/model"

	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindAll() ([]model.Customer, error)
	FindByID(id uint) (*model.Customer, error)
	Update(customer *model.Customer) error
	Delete(id uint) error
	Search(term string) ([]model.Customer, error)
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(customer *model.Customer) error {
	return translate(r.db.Create(customer).Error, ErrInUse)
}

func (r *customerRepo) FindAll() ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) FindByID(id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		return nil, translate(err, ErrInUse)
	}
	return &customer, nil
}

func (r *customerRepo) Update(customer *model.Customer) error {
	res := r.db.Model(&model.Customer{}).
		Where("id = ?", customer.ID).
		Select("name", "national_id", "phone", "email", "updated_by").
		Updates(customer)
	if res.Error != nil {
		return translate(res.Error, ErrInUse)
	}
	if res.RowsAffected == 0 {
		return notFound("customer", customer.ID)
	}
	return nil
}

// Delete fails with ErrInUse while a sale references the customer
func (r *customerRepo) Delete(id uint) error {
	var refs int64
	if err := r.db.Model(&model.SaleHeader{}).Where("customer_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return ErrInUse
	}
	res := r.db.Delete(&model.Customer{}, id)
	if res.Error != nil {
		return translate(res.Error, ErrInUse)
	}
	if res.RowsAffected == 0 {
		return notFound("customer", id)
	}
	return nil
}

func (r *customerRepo) Search(term string) ([]model.Customer, error) {
	var customers []model.Customer
	like := likePattern(term)
	err := r.db.
		Where("LOWER(name) LIKE ? OR LOWER(national_id) LIKE ?", like, like).
		Order("name ASC").
		Find(&customers).Error
	return customers, err
}

type SupplierRepository interface {
	Create(supplier *model.Supplier) error
	FindAll() ([]model.Supplier, error)
	FindByID(id uint) (*model.Supplier, error)
	Update(supplier *model.Supplier) error
	Delete(id uint) error
	Search(term string) ([]model.Supplier, error)
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(supplier *model.Supplier) error {
	return translate(r.db.Create(supplier).Error, ErrInUse)
}

func (r *supplierRepo) FindAll() ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) FindByID(id uint) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.First(&supplier, id).Error; err != nil {
		return nil, translate(err, ErrInUse)
	}
	return &supplier, nil
}

func (r *supplierRepo) Update(supplier *model.Supplier) error {
	res := r.db.Model(&model.Supplier{}).
		Where("id = ?", supplier.ID).
		Select("name", "tax_id", "phone", "email", "updated_by").
		Updates(supplier)
	if res.Error != nil {
		return translate(res.Error, ErrInUse)
	}
	if res.RowsAffected == 0 {
		return notFound("supplier", supplier.ID)
	}
	return nil
}

func (r *supplierRepo) Delete(id uint) error {
	var refs int64
	if err := r.db.Model(&model.PurchaseHeader{}).Where("supplier_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return ErrInUse
	}
	res := r.db.Delete(&model.Supplier{}, id)
	if res.Error != nil {
		return translate(res.Error, ErrInUse)
	}
	if res.RowsAffected == 0 {
		return notFound("supplier", id)
	}
	return nil
}

func (r *supplierRepo) Search(term string) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	like := likePattern(term)
	err := r.db.
		Where("LOWER(name) LIKE ? OR LOWER(tax_id) LIKE ?", like, like).
		Order("name ASC").
		Find(&suppliers).Error
	return suppliers, err
}

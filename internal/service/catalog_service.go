package service

import (
	"context"
	"errors"
	"strings"

	"bodega-pos/internal/events"
	"bodega-pos/internal/model"
	"bodega-pos/internal/repository"
	"bodega-pos/pkg/validator"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrNegativePrice    = errors.New("prices must not be negative")
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *model.Product, userID string) error
	UpdateProduct(ctx context.Context, id uint, req *model.Product, userID string) (*model.Product, error)
	DeleteProduct(id uint) error
	GetProduct(id uint) (*model.Product, error)
	GetAllProducts() ([]model.Product, error)
	SearchProducts(term string) ([]model.Product, error)
	LowStock() ([]model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	publisher   events.Publisher
	threshold   int
}

func NewProductService(productRepo repository.ProductRepository, publisher events.Publisher, lowStockThreshold int) ProductService {
	return &productService{productRepo: productRepo, publisher: publisher, threshold: lowStockThreshold}
}

func validateProduct(p *model.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := validator.FirstError(p); err != nil {
		return err
	}
	if p.PurchasePrice.IsNegative() || p.SalePrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, req *model.Product, userID string) error {
	if err := validateProduct(req); err != nil {
		return err
	}
	req.ID = 0
	req.CreatedBy = userID
	req.UpdatedBy = userID

	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	s.announce(ctx, events.ProductCreated, req, userID)
	return nil
}

// UpdateProduct edits the catalog fields. Stock only moves through sales and purchases.
func (s *productService) UpdateProduct(ctx context.Context, id uint, req *model.Product, userID string) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	req.ID = id
	req.UpdatedBy = userID

	if err := s.productRepo.Update(req); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	updated, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, events.ProductUpdated, updated, userID)
	return updated, nil
}

func (s *productService) announce(ctx context.Context, eventType string, p *model.Product, userID string) {
	_ = s.publisher.Publish(ctx, events.New(eventType, map[string]interface{}{
		"product": map[string]interface{}{
			"id":         p.ID,
			"name":       p.Name,
			"stock":      p.Stock,
			"sale_price": p.SalePrice,
		},
		"user_id": userID,
	}))
}

func (s *productService) DeleteProduct(id uint) error {
	err := s.productRepo.Delete(id)
	if repository.IsNotFound(err) {
		return ErrProductNotFound
	}
	return err
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	p, err := s.productRepo.FindByID(id)
	if repository.IsNotFound(err) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *productService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *productService) SearchProducts(term string) ([]model.Product, error) {
	if strings.TrimSpace(term) == "" {
		return s.productRepo.FindAll()
	}
	return s.productRepo.Search(term)
}

func (s *productService) LowStock() ([]model.Product, error) {
	return s.productRepo.LowStock(s.threshold)
}

type CustomerService interface {
	Create(req *model.Customer, userID string) error
	Update(id uint, req *model.Customer, userID string) (*model.Customer, error)
	Delete(id uint) error
	Get(id uint) (*model.Customer, error)
	List() ([]model.Customer, error)
	Search(term string) ([]model.Customer, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(req *model.Customer, userID string) error {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.FirstError(req); err != nil {
		return err
	}
	req.ID = 0
	req.CreatedBy = userID
	req.UpdatedBy = userID
	return s.repo.Create(req)
}

func (s *customerService) Update(id uint, req *model.Customer, userID string) (*model.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.FirstError(req); err != nil {
		return nil, err
	}
	req.ID = id
	req.UpdatedBy = userID
	if err := s.repo.Update(req); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return s.repo.FindByID(id)
}

func (s *customerService) Delete(id uint) error {
	err := s.repo.Delete(id)
	if repository.IsNotFound(err) {
		return ErrCustomerNotFound
	}
	return err
}

func (s *customerService) Get(id uint) (*model.Customer, error) {
	c, err := s.repo.FindByID(id)
	if repository.IsNotFound(err) {
		return nil, ErrCustomerNotFound
	}
	return c, err
}

func (s *customerService) List() ([]model.Customer, error) {
	return s.repo.FindAll()
}

func (s *customerService) Search(term string) ([]model.Customer, error) {
	if strings.TrimSpace(term) == "" {
		return s.repo.FindAll()
	}
	return s.repo.Search(term)
}

type SupplierService interface {
	Create(req *model.Supplier, userID string) error
	Update(id uint, req *model.Supplier, userID string) (*model.Supplier, error)
	Delete(id uint) error
	Get(id uint) (*model.Supplier, error)
	List() ([]model.Supplier, error)
	Search(term string) ([]model.Supplier, error)
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(req *model.Supplier, userID string) error {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.FirstError(req); err != nil {
		return err
	}
	req.ID = 0
	req.CreatedBy = userID
	req.UpdatedBy = userID
	return s.repo.Create(req)
}

func (s *supplierService) Update(id uint, req *model.Supplier, userID string) (*model.Supplier, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.FirstError(req); err != nil {
		return nil, err
	}
	req.ID = id
	req.UpdatedBy = userID
	if err := s.repo.Update(req); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	return s.repo.FindByID(id)
}

func (s *supplierService) Delete(id uint) error {
	err := s.repo.Delete(id)
	if repository.IsNotFound(err) {
		return ErrSupplierNotFound
	}
	return err
}

func (s *supplierService) Get(id uint) (*model.Supplier, error) {
	sup, err := s.repo.FindByID(id)
	if repository.IsNotFound(err) {
		return nil, ErrSupplierNotFound
	}
	return sup, err
}

func (s *supplierService) List() ([]model.Supplier, error) {
	return s.repo.FindAll()
}

func (s *supplierService) Search(term string) ([]model.Supplier, error) {
	if strings.TrimSpace(term) == "" {
		return s.repo.FindAll()
	}
	return s.repo.Search(term)
}

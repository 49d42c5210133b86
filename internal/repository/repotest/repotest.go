// Package repotest opens throwaway sqlite databases with the full schema.
package repotest

import (
	"strings"
	"testing"

	"bodega-pos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns an in-memory database private to the calling test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps transactions and plain statements serialized
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func Operator(t testing.TB, db *gorm.DB, first, last string, role model.Role) *model.UserProfile {
	t.Helper()
	u := &model.UserProfile{
		Email:     strings.ToLower(first+"."+last) + "@bodega.pe",
		FirstName: first,
		LastName:  last,
		Role:      role,
		IsActive:  true,
	}
	if err := u.SetPassword("secret123"); err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("operator: %v", err)
	}
	return u
}

func Product(t testing.TB, db *gorm.DB, name string, stock int, salePrice, purchasePrice string) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:          name,
		Stock:         stock,
		SalePrice:     decimal.RequireFromString(salePrice),
		PurchasePrice: decimal.RequireFromString(purchasePrice),
		Unit:          "und",
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	return p
}

func Customer(t testing.TB, db *gorm.DB, name, nationalID string) *model.Customer {
	t.Helper()
	c := &model.Customer{Name: name, NationalID: nationalID}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("customer: %v", err)
	}
	return c
}

func Supplier(t testing.TB, db *gorm.DB, name, taxID string) *model.Supplier {
	t.Helper()
	s := &model.Supplier{Name: name, TaxID: taxID}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("supplier: %v", err)
	}
	return s
}

// Stock reads a product's stock straight from the table.
func Stock(t testing.TB, db *gorm.DB, productID uint) int {
	t.Helper()
	var p model.Product
	if err := db.Select("stock").First(&p, productID).Error; err != nil {
		t.Fatalf("stock of %d: %v", productID, err)
	}
	return p.Stock
}

// Count returns the number of rows of the model's table.
func Count(t testing.TB, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

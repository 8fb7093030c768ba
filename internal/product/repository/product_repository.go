package repository

import (
	"context"
	"errors"

	"farmlink_service/internal/product/domain"
	errprocess "farmlink_service/pkg/err"

	"gorm.io/gorm"
)

// ProductRepository listing lookups
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// SellerOf member id owning the listing
	SellerOf(ctx context.Context, productID string) (string, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository create a gorm ProductRepository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Migrate creates or updates the products table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Product{})
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return errprocess.Wrap(errprocess.CodeUnavailable, "product store unavailable", err)
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, errprocess.Wrap(errprocess.CodeUnavailable, "product store unavailable", err)
	}
	return &p, nil
}

func (r *productRepository) SellerOf(ctx context.Context, productID string) (string, error) {
	p, err := r.FindByID(ctx, productID)
	if err != nil {
		return "", err
	}
	return p.SellerID, nil
}

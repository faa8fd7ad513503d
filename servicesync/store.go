package servicesync

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/service_sync/models"
	"bitbucket.org/mmdatafocus/service_sync/utils"
	"gorm.io/gorm"
)

// TargetStore is the local side of the reconciliation.
type TargetStore interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	// FindServiceProduct and FindProduct return nil, nil when nothing matches.
	FindServiceProduct(ctx context.Context, serviceId int) (*models.ServiceProduct, error)
	FindProduct(ctx context.Context, productId int) (*models.Product, error)
	// ResolveService applies repair in one statement and returns the number
	// of rows it changed.
	ResolveService(ctx context.Context, repair ServiceRepair) (int64, error)
}

// ServiceRepair carries the upstream values written back by ResolveService.
type ServiceRepair struct {
	MobileNumber string
	Network      string
	ProductLabel string
	Price        utils.Amount
}

func repairFor(src SourceService) ServiceRepair {
	r := ServiceRepair{
		MobileNumber: src.MobileNumber,
		Network:      src.Network,
	}
	if src.ServiceProduct != nil {
		r.ProductLabel = src.ServiceProduct.Type
		r.Price = src.ServiceProduct.Price
	}
	return r
}

type gormTargetStore struct {
	db *gorm.DB
}

func NewTargetStore(db *gorm.DB) TargetStore {
	return &gormTargetStore{db: db}
}

func (s *gormTargetStore) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := s.db.WithContext(ctx).Order("id").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (s *gormTargetStore) FindServiceProduct(ctx context.Context, serviceId int) (*models.ServiceProduct, error) {
	var sp models.ServiceProduct
	err := s.db.WithContext(ctx).Where("service_id = ?", serviceId).Order("id").First(&sp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sp, nil
}

func (s *gormTargetStore) FindProduct(ctx context.Context, productId int) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Where("id = ?", productId).Take(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// resolveServiceSQL is MySQL's multi-table UPDATE. When no product carries the
// label the join is empty and nothing is updated.
const resolveServiceSQL = `
UPDATE services
INNER JOIN service_products ON service_products.service_id = services.id
INNER JOIN products ON products.label = ?
SET services.network = ?,
    service_products.product_id = products.id,
    service_products.amount = ?
WHERE services.mobile_number = ?`

func (s *gormTargetStore) ResolveService(ctx context.Context, repair ServiceRepair) (int64, error) {
	var price any
	if repair.Price.Valid {
		price = repair.Price.Decimal
	} else if !repair.Price.IsNull() {
		price = repair.Price.Raw
	}
	res := s.db.WithContext(ctx).Exec(resolveServiceSQL,
		repair.ProductLabel,
		repair.Network,
		price,
		repair.MobileNumber,
	)
	return res.RowsAffected, res.Error
}

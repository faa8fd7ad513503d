package servicesync

import (
	"context"

	"bitbucket.org/mmdatafocus/service_sync/models"
	"gorm.io/gorm"
)

// MappingStore persists local id <-> upstream id links.
type MappingStore interface {
	// EnsureSchema creates the mapping table when it does not exist. It never
	// alters or drops an existing table.
	EnsureSchema(ctx context.Context) error
	// Record inserts the link unless the exact triple is already stored.
	// created reports whether a row was written.
	Record(ctx context.Context, mappingType models.MappingType, localId, externalId int) (created bool, err error)
}

type gormMappingStore struct {
	db *gorm.DB
}

func NewMappingStore(db *gorm.DB) MappingStore {
	return &gormMappingStore{db: db}
}

func (s *gormMappingStore) EnsureSchema(ctx context.Context) error {
	m := s.db.WithContext(ctx).Migrator()
	if m.HasTable(&models.Mapping{}) {
		return nil
	}
	return m.CreateTable(&models.Mapping{})
}

// Existence check and insert run as one statement.
const recordMappingSQL = "INSERT INTO `mapping` (`type`, `local_id`, `external_id`) " +
	"SELECT * FROM (SELECT ? AS `type`, ? AS `local_id`, ? AS `external_id`) AS tmp " +
	"WHERE NOT EXISTS (SELECT `id` FROM `mapping` WHERE `type` = ? AND `local_id` = ? AND `external_id` = ?)"

func (s *gormMappingStore) Record(ctx context.Context, mappingType models.MappingType, localId, externalId int) (bool, error) {
	res := s.db.WithContext(ctx).Exec(recordMappingSQL,
		int(mappingType), localId, externalId,
		int(mappingType), localId, externalId,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

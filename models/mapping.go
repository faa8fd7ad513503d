package models

type MappingType int8

const (
	MappingTypeService        MappingType = 1
	MappingTypeServiceProduct MappingType = 2
)

func (t MappingType) String() string {
	switch t {
	case MappingTypeService:
		return "service"
	case MappingTypeServiceProduct:
		return "service_product"
	default:
		return "unknown"
	}
}

// Mapping links a local row id to the id of the same entity upstream.
// The (type, local_id, external_id) triple is unique by convention only: rows
// are written through a conditional insert and the table carries no unique index.
type Mapping struct {
	ID         int         `gorm:"primary_key;autoIncrement" json:"id"`
	Type       MappingType `gorm:"type:tinyint;not null" json:"type"`
	LocalId    int         `gorm:"not null" json:"local_id"`
	ExternalId int         `gorm:"not null" json:"external_id"`
}

func (Mapping) TableName() string {
	return "mapping"
}

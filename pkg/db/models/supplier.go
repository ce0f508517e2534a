package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is the catalog owner referenced by products. CRUD screens for
// suppliers live outside this core; the row exists for ownership scoping.
type Supplier struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name          string    `gorm:"column:name;not null;uniqueIndex"`
	ContactPerson *string   `gorm:"column:contact_person"`
	Email         string    `gorm:"column:email;not null;uniqueIndex"`
	Phone         *string   `gorm:"column:phone"`
	Address       *string   `gorm:"column:address"`
	Products      []Product `gorm:"foreignKey:SupplierID"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timestamps replaces the time columns of gorm.Model without its implicit
// DeletedAt soft delete. Soft deletion is an explicit flag, see SoftDelete.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SoftDelete marks a record as logically removed.
type SoftDelete struct {
	IsDeleted bool `gorm:"not null;default:false;index" json:"isDeleted"`
}

// Deleted reports whether the record is soft-deleted.
func (s SoftDelete) Deleted() bool {
	return s.IsDeleted
}

// BaseModel is the base for models with an auto-increment key.
type BaseModel struct {
	ID uint `gorm:"primaryKey" json:"id"`
	Timestamps
}

// UUIDModel is the base for models keyed by a generated UUID string.
type UUIDModel struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Timestamps
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (m *UUIDModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type Subcategory struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:subcategories_name_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

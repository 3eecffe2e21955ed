package models

import "time"

// BaseModel carries the integer primary key and bookkeeping timestamps
// shared by every table. Soft deletes are deliberately absent: all core
// tables are append-only and historical rows must stay visible.
type BaseModel struct {
	ID        int       `gorm:"type:integer;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime"                        json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"                        json:"updatedAt"`
}

// file: internals/features/presets/model/preset_model.go
package model

import "time"

// PresetModel is a saved order query (filters, sorter, views) a staff
// member can re-run by name. The query body is stored verbatim as JSON.
type PresetModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	Owner     string    `gorm:"not null;index;column:owner" json:"owner"`
	Query     string    `gorm:"type:text;not null;column:query" json:"query"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (PresetModel) TableName() string { return "presets" }

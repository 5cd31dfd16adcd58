// internals/features/orders/model/tracking_note_model.go
package model

import "time"

// TrackingNoteModel holds the optional free-text annotation on an order.
// Kept in its own table rather than a column on extra_info so it can grow
// into a multi-note timeline later.
type TrackingNoteModel struct {
	NoteID       int       `gorm:"primaryKey;autoIncrement;column:note_id" json:"note_id"`
	BookID       int       `gorm:"column:book_id;index" json:"book_id"`
	TrackingNote string    `gorm:"column:tracking_note" json:"tracking_note"`
	TakenBy      string    `gorm:"column:taken_by" json:"taken_by"`
	Date         time.Time `gorm:"column:date" json:"date"`
}

func (TrackingNoteModel) TableName() string { return "notes" }

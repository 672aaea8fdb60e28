package calendar

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CalendarEntry is one mapped spreadsheet row. Entries are a derived
// snapshot: remapping the calendar wipes and rebuilds them, Position
// preserves the original sheet order.
type CalendarEntry struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CalendarID uuid.UUID        `gorm:"type:uuid;not null;index" json:"calendar_id"`
	Calendar   *ContentCalendar `gorm:"constraint:OnDelete:CASCADE;foreignKey:CalendarID;references:ID" json:"calendar,omitempty"`

	Position     int    `gorm:"column:position;not null;index" json:"position"`
	Title        string `gorm:"column:title" json:"title"`
	RawKeywords  string `gorm:"column:raw_keywords" json:"raw_keywords"`
	Category     string `gorm:"column:category;index" json:"category"`
	PublishedURL string `gorm:"column:published_url" json:"published_url"`
	Description  string `gorm:"column:description;type:text" json:"description"`

	// Every mapped field by name, canonical and extra alike, for
	// prompt rendering.
	FieldValues datatypes.JSON `gorm:"column:field_values;type:jsonb" json:"field_values"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CalendarEntry) TableName() string { return "calendar_entry" }

func (e *CalendarEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

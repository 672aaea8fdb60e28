package calendar

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/domain/user"
)

const (
	CalendarStatusUploaded  = "uploaded"
	CalendarStatusAnalyzing = "analyzing"
	CalendarStatusReady     = "ready"
	CalendarStatusFailed    = "failed"
)

// ContentCalendar is one uploaded planning spreadsheet. The raw sheet
// (headers + cells) is kept on the row so the column mapping can be
// changed later without re-uploading the file.
type ContentCalendar struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Name         string `gorm:"column:name;not null" json:"name"`
	OriginalName string `gorm:"column:original_name;not null" json:"original_name"`
	MimeType     string `gorm:"column:mime_type" json:"mime_type"`
	SizeBytes    int64  `gorm:"column:size_bytes" json:"size_bytes"`
	StorageKey   string `gorm:"column:storage_key" json:"storage_key"`
	FileURL      string `gorm:"column:file_url" json:"file_url"`

	SheetName     string         `gorm:"column:sheet_name" json:"sheet_name"`
	Headers       datatypes.JSON `gorm:"column:headers;type:jsonb" json:"headers"`
	Cells         datatypes.JSON `gorm:"column:cells;type:jsonb" json:"-"`
	ColumnMapping datatypes.JSON `gorm:"column:column_mapping;type:jsonb" json:"column_mapping"`

	RowCount   int        `gorm:"column:row_count;not null;default:0" json:"row_count"`
	Status     string     `gorm:"column:status;not null;default:'uploaded'" json:"status"`
	AnalyzedAt *time.Time `gorm:"column:analyzed_at" json:"analyzed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ContentCalendar) TableName() string { return "content_calendar" }

func (c *ContentCalendar) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

package calendar

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisSnapshot holds the latest similarity report for a calendar.
// One row per calendar, replaced on every rerun.
type AnalysisSnapshot struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CalendarID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"calendar_id"`

	TotalRows      int `gorm:"column:total_rows;not null;default:0" json:"total_rows"`
	PublishedCount int `gorm:"column:published_count;not null;default:0" json:"published_count"`
	ClusterCount   int `gorm:"column:cluster_count;not null;default:0" json:"cluster_count"`

	Payload     datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	GeneratedAt time.Time      `gorm:"column:generated_at;not null" json:"generated_at"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AnalysisSnapshot) TableName() string { return "analysis_snapshot" }

func (s *AnalysisSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

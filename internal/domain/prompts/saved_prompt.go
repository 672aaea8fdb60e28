package prompts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/domain/user"
)

// SavedPrompt is a rendered prompt kept by the user. FolderID nil means
// the root folder. Template/calendar/row provenance is optional and
// survives deletion of the source objects.
type SavedPrompt struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	FolderID *uuid.UUID    `gorm:"type:uuid;column:folder_id;index" json:"folder_id,omitempty"`
	Folder   *PromptFolder `gorm:"foreignKey:FolderID;references:ID" json:"folder,omitempty"`

	Title string `gorm:"column:title;not null" json:"title"`
	Body  string `gorm:"column:body;type:text;not null" json:"body"`

	TemplateID *uuid.UUID `gorm:"type:uuid;column:template_id;index" json:"template_id,omitempty"`
	CalendarID *uuid.UUID `gorm:"type:uuid;column:calendar_id;index" json:"calendar_id,omitempty"`
	RowIndex   *int       `gorm:"column:row_index" json:"row_index,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SavedPrompt) TableName() string { return "saved_prompt" }

func (p *SavedPrompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

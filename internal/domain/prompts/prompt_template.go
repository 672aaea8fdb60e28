package prompts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/domain/user"
)

// PromptTemplate is a reusable prompt body with {{field}} placeholders.
// Fields caches the placeholder names extracted from Body on write.
type PromptTemplate struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_prompt_template_user_name,priority:1" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Name        string         `gorm:"column:name;not null;uniqueIndex:idx_prompt_template_user_name,priority:2" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	Body        string         `gorm:"column:body;type:text;not null" json:"body"`
	Fields      datatypes.JSON `gorm:"column:fields;type:jsonb" json:"fields"`
	IsDefault   bool           `gorm:"column:is_default;not null;default:false" json:"is_default"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PromptTemplate) TableName() string { return "prompt_template" }

func (t *PromptTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

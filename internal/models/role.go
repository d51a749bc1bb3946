package models

import (
	"time"

	"github.com/google/uuid"
)

type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	RubricText  *string   `gorm:"type:text" json:"rubric_text"`
	CreatedAt   time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (Role) TableName() string {
	return "roles"
}

// HasRubric reports whether the role has a usable evaluation rubric.
func (r *Role) HasRubric() bool {
	return r.RubricText != nil && *r.RubricText != ""
}

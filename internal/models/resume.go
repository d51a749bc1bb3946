package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Resume struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RoleID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"role_id"`
	FileName          string         `gorm:"type:text;not null" json:"file_name"`
	FileURL           string         `gorm:"type:text;not null" json:"file_url"`
	Score             int            `gorm:"not null;default:0" json:"score"`
	EvaluationDetails datatypes.JSON `gorm:"type:jsonb" json:"evaluation_details"`
	CreatedAt         time.Time      `gorm:"type:timestamp;default:now()" json:"created_at"`

	// Relations
	Role Role `gorm:"foreignKey:RoleID" json:"-"`
}

func (Resume) TableName() string {
	return "resumes"
}

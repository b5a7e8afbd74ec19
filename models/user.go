package models

import (
	"time"

	"github.com/Pavitraraman/oneflow/constants"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	WorkMail  string         `gorm:"uniqueIndex" json:"work_mail"`
	Password  string         `json:"-"`
	Role      constants.Role `gorm:"default:'TEAM_MEMBER'" json:"role"`
	ManagerID *uint          `json:"manager_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

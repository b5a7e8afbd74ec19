package models

import "time"

type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `gorm:"default:'Planned'" json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	Budget   float64 `gorm:"default:0" json:"budget"`
	Progress float64 `gorm:"default:0" json:"progress"`

	EstimatedRevenue float64 `gorm:"default:0" json:"estimated_revenue"`
	// ActualRevenue, ActualCost and Profit are maintained by the finance
	// controller as entries are linked.
	ActualRevenue float64 `gorm:"default:0" json:"actual_revenue"`
	ActualCost    float64 `gorm:"default:0" json:"actual_cost"`
	Profit        float64 `gorm:"default:0" json:"profit"`

	ManagerID *uint  `json:"manager_id"`
	Manager   *User  `json:"manager,omitempty"`
	Tasks     []Task `json:"tasks,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

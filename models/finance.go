package models

import (
	"time"

	"github.com/Pavitraraman/oneflow/constants"
)

// FinancialEntry links revenue or cost to a project and feeds the
// project's actual_revenue / actual_cost / profit fields.
type FinancialEntry struct {
	ID          uint                         `gorm:"primaryKey" json:"id"`
	EntryType   constants.FinancialEntryType `json:"entry_type"`
	Amount      float64                      `json:"amount"`
	Description string                       `json:"description"`
	ProjectID   uint                         `json:"project_id"`
	EntryDate   *time.Time                   `json:"entry_date"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

// FinancialDocument is an invoice or bill, optionally tied to a project.
type FinancialDocument struct {
	ID             uint                   `gorm:"primaryKey" json:"id"`
	DocType        constants.DocumentType `json:"doc_type"`
	PartnerName    string                 `json:"partner_name"`
	DocumentNumber string                 `json:"document_number"`
	Amount         float64                `json:"amount"`
	State          string                 `gorm:"default:'Draft'" json:"state"`
	ProjectID      *uint                  `json:"project_id"`
	Project        *Project               `json:"project,omitempty"`
	CreatedByID    uint                   `json:"created_by_id"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Pavitraraman/oneflow/constants"
	"github.com/Pavitraraman/oneflow/models"
	"github.com/Pavitraraman/oneflow/utils"
)

type FinanceController struct {
	DB *gorm.DB
}

// LinkEntry records a revenue or cost entry against a project and keeps
// the project's actual_revenue / actual_cost / profit in step, all in
// one transaction.
func (fc *FinanceController) LinkEntry(c *gin.Context) {
	var input struct {
		EntryType   constants.FinancialEntryType `json:"entry_type" binding:"required"`
		Amount      float64                      `json:"amount" binding:"required"`
		Description string                       `json:"description"`
		ProjectID   uint                         `json:"project_id" binding:"required"`
		EntryDate   *string                      `json:"entry_date"`
	}

	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be greater than 0"})
		return
	}
	if input.EntryType != constants.EntryTypeRevenue && input.EntryType != constants.EntryTypeCost {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown entry type"})
		return
	}

	var project models.Project
	if err := fc.DB.First(&project, input.ProjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	entryDate := time.Now()
	if input.EntryDate != nil {
		parsed, err := time.Parse("2006-01-02", *input.EntryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry_date, expected YYYY-MM-DD"})
			return
		}
		entryDate = parsed
	}

	entry := models.FinancialEntry{
		EntryType:   input.EntryType,
		Amount:      input.Amount,
		Description: input.Description,
		ProjectID:   input.ProjectID,
		EntryDate:   &entryDate,
	}

	err := fc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		switch input.EntryType {
		case constants.EntryTypeRevenue:
			project.ActualRevenue += input.Amount
		case constants.EntryTypeCost:
			project.ActualCost += input.Amount
		}
		project.Profit = project.ActualRevenue - project.ActualCost

		return tx.Save(&project).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (fc *FinanceController) GetEntries(c *gin.Context) {
	var entries []models.FinancialEntry

	query := fc.DB.Order("entry_date DESC")
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	if err := query.Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (fc *FinanceController) CreateDocument(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not resolve actor"})
		return
	}

	var input struct {
		DocType        constants.DocumentType `json:"doc_type" binding:"required"`
		PartnerName    string                 `json:"partner_name" binding:"required"`
		DocumentNumber string                 `json:"document_number" binding:"required"`
		Amount         float64                `json:"amount" binding:"required"`
		State          string                 `json:"state"`
		ProjectID      *uint                  `json:"project_id"`
	}

	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be greater than 0"})
		return
	}

	if input.ProjectID != nil {
		var project models.Project
		if err := fc.DB.First(&project, *input.ProjectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
	}

	state := input.State
	if state == "" {
		state = "Draft"
	}

	doc := models.FinancialDocument{
		DocType:        input.DocType,
		PartnerName:    input.PartnerName,
		DocumentNumber: input.DocumentNumber,
		Amount:         input.Amount,
		State:          state,
		ProjectID:      input.ProjectID,
		CreatedByID:    actor.UserID,
	}

	if err := fc.DB.Create(&doc).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (fc *FinanceController) GetDocuments(c *gin.Context) {
	var docs []models.FinancialDocument

	query := fc.DB.Preload("Project")
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if docType := c.Query("doc_type"); docType != "" {
		query = query.Where("doc_type = ?", docType)
	}

	if err := query.Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, docs)
}

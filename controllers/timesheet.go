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

type TimesheetController struct {
	DB *gorm.DB
}

// CreateTimesheet logs hours against a task and folds them into the
// task's actual_hours in the same transaction. This is the only writer
// of actual_hours.
func (tsc *TimesheetController) CreateTimesheet(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not resolve actor"})
		return
	}

	var input struct {
		TaskID      uint    `json:"task_id" binding:"required"`
		Hours       float64 `json:"hours" binding:"required"`
		Description string  `json:"description"`
		Date        *string `json:"date"`
	}

	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Hours <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Hours must be greater than 0"})
		return
	}

	var task models.Task
	if err := tsc.DB.First(&task, input.TaskID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	entryDate := time.Now()
	if input.Date != nil {
		parsed, err := time.Parse("2006-01-02", *input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		entryDate = parsed
	}

	entry := models.Timesheet{
		TaskID:      input.TaskID,
		UserID:      actor.UserID,
		Hours:       input.Hours,
		Description: input.Description,
		Date:        &entryDate,
	}

	err := tsc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).
			Where("id = ?", task.ID).
			Update("actual_hours", gorm.Expr("actual_hours + ?", input.Hours)).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// GetTimesheets applies role-based visibility: team members see their
// own entries, project managers see entries for projects they manage,
// admin and finance see everything.
func (tsc *TimesheetController) GetTimesheets(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not resolve actor"})
		return
	}

	query := tsc.DB.Preload("User").Preload("Task")

	switch actor.Role {
	case constants.RoleTeamMember:
		query = query.Where("timesheets.user_id = ?", actor.UserID)
	case constants.RoleProjectManager:
		query = query.
			Joins("JOIN tasks ON tasks.id = timesheets.task_id").
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.manager_id = ?", actor.UserID)
	}

	if taskID := c.Query("task_id"); taskID != "" {
		query = query.Where("timesheets.task_id = ?", taskID)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("timesheets.user_id = ?", userID)
	}
	if projectID := c.Query("project_id"); projectID != "" {
		if actor.Role != constants.RoleProjectManager {
			query = query.Joins("JOIN tasks ON tasks.id = timesheets.task_id")
		}
		query = query.Where("tasks.project_id = ?", projectID)
	}

	var timesheets []models.Timesheet
	if err := query.Order("timesheets.date DESC, timesheets.created_at DESC").Find(&timesheets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, timesheets)
}

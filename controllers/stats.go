package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Pavitraraman/oneflow/constants"
	"github.com/Pavitraraman/oneflow/models"
	"github.com/Pavitraraman/oneflow/utils"
)

type StatsController struct {
	DB *gorm.DB
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Dashboard aggregates counts for the landing page. Admin and finance
// see every project; other roles only projects they manage.
func (sc *StatsController) Dashboard(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not resolve actor"})
		return
	}

	projectScope := func() *gorm.DB {
		q := sc.DB.Model(&models.Project{})
		if actor.Role != constants.RoleAdmin && actor.Role != constants.RoleFinance {
			q = q.Where("manager_id = ?", actor.UserID)
		}
		return q
	}

	var totalProjects int64
	if err := projectScope().Count(&totalProjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var projectRows []statusCount
	if err := projectScope().
		Select("status, count(id) as count").
		Group("status").
		Scan(&projectRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var totalTasks int64
	if err := sc.DB.Model(&models.Task{}).Count(&totalTasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var taskRows []statusCount
	if err := sc.DB.Model(&models.Task{}).
		Select("status, count(id) as count").
		Group("status").
		Scan(&taskRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var priorityRows []struct {
		Priority string `json:"priority"`
		Count    int64  `json:"count"`
	}
	if err := sc.DB.Model(&models.Task{}).
		Select("priority, count(id) as count").
		Group("priority").
		Scan(&priorityRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var totalHours float64
	if err := sc.DB.Model(&models.Timesheet{}).
		Select("coalesce(sum(hours), 0)").
		Scan(&totalHours).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	projectsByStatus := make(map[string]int64, len(projectRows))
	for _, row := range projectRows {
		projectsByStatus[row.Status] = row.Count
	}
	tasksByStatus := make(map[string]int64, len(taskRows))
	for _, row := range taskRows {
		tasksByStatus[row.Status] = row.Count
	}
	tasksByPriority := make(map[string]int64, len(priorityRows))
	for _, row := range priorityRows {
		tasksByPriority[row.Priority] = row.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"total_projects":     totalProjects,
		"projects_by_status": projectsByStatus,
		"total_tasks":        totalTasks,
		"tasks_by_status":    tasksByStatus,
		"tasks_by_priority":  tasksByPriority,
		"total_hours_logged": totalHours,
	})
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Pavitraraman/oneflow/models"
	"github.com/Pavitraraman/oneflow/utils"
)

type ProjectController struct {
	DB *gorm.DB
}

func (pc *ProjectController) CreateProject(c *gin.Context) {
	var project models.Project

	if err := c.BindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if project.ManagerID != nil {
		var manager models.User
		if err := pc.DB.First(&manager, *project.ManagerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Manager not found"})
			return
		}
	} else if actor, ok := utils.CurrentActor(c); ok {
		// No manager supplied: the creator manages the project.
		id := actor.UserID
		project.ManagerID = &id
	}

	if err := pc.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (pc *ProjectController) GetProjects(c *gin.Context) {
	var projects []models.Project

	query := pc.DB.Preload("Manager")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (pc *ProjectController) GetProject(c *gin.Context) {
	id := c.Param("id")

	var project models.Project
	if err := pc.DB.Preload("Manager").First(&project, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (pc *ProjectController) UpdateProject(c *gin.Context) {
	id := c.Param("id")

	var project models.Project
	if err := pc.DB.First(&project, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var input struct {
		Name             *string  `json:"name"`
		Description      *string  `json:"description"`
		Status           *string  `json:"status"`
		Budget           *float64 `json:"budget"`
		Progress         *float64 `json:"progress"`
		EstimatedRevenue *float64 `json:"estimated_revenue"`
		ManagerID        *uint    `json:"manager_id"`
	}

	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.ManagerID != nil {
		var manager models.User
		if err := pc.DB.First(&manager, *input.ManagerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Manager not found"})
			return
		}
		project.ManagerID = input.ManagerID
	}
	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.Budget != nil {
		project.Budget = *input.Budget
	}
	if input.Progress != nil {
		project.Progress = *input.Progress
	}
	if input.EstimatedRevenue != nil {
		project.EstimatedRevenue = *input.EstimatedRevenue
	}

	pc.DB.Save(&project)

	c.JSON(http.StatusOK, project)
}

func (pc *ProjectController) DeleteProject(c *gin.Context) {
	id := c.Param("id")

	var project models.Project
	if err := pc.DB.First(&project, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	// Tasks go with the project.
	pc.DB.Where("project_id = ?", project.ID).Delete(&models.Task{})
	pc.DB.Delete(&project)

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

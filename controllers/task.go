package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Pavitraraman/oneflow/constants"
	"github.com/Pavitraraman/oneflow/models"
	"github.com/Pavitraraman/oneflow/utils"
	"github.com/Pavitraraman/oneflow/workflow"
)

type TaskController struct {
	DB *gorm.DB
	// Notify is invoked after a transition applies, outside the
	// transaction. Nil means the default log line.
	Notify func(models.TaskEvent)
}

// errStatusChanged signals that the guarded write lost a race: another
// call committed first and this one must be re-evaluated as rejected.
var errStatusChanged = errors.New("task status changed concurrently")

type taskInput struct {
	Title          *string                 `json:"title"`
	Description    *string                 `json:"description"`
	Status         *constants.TaskStatus   `json:"status"`
	Priority       *constants.TaskPriority `json:"priority"`
	Deadline       *string                 `json:"deadline"`
	EstimatedHours *float64                `json:"estimated_hours"`
	ProjectID      *uint                   `json:"project_id"`
	AssigneeIDs    []uint                  `json:"assignee_ids"`
}

func (tc *TaskController) CreateTask(c *gin.Context) {
	var input struct {
		Title          string                 `json:"title" binding:"required"`
		Description    string                 `json:"description"`
		Priority       constants.TaskPriority `json:"priority"`
		Deadline       *string                `json:"deadline"`
		EstimatedHours float64                `json:"estimated_hours"`
		ProjectID      uint                   `json:"project_id" binding:"required"`
		AssigneeIDs    []uint                 `json:"assignee_ids"`
	}

	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := tc.DB.First(&project, input.ProjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	assignees, ok := tc.loadAssignees(c, input.AssigneeIDs)
	if !ok {
		return
	}

	priority := input.Priority
	if priority == "" {
		priority = constants.PriorityMedium
	}

	deadline, ok := parseDeadline(c, input.Deadline)
	if !ok {
		return
	}

	// New tasks always start at TODO; status moves only through the
	// transition endpoints afterwards.
	task := models.Task{
		Title:          input.Title,
		Description:    input.Description,
		Status:         constants.TaskStatusTodo,
		Priority:       priority,
		Deadline:       deadline,
		EstimatedHours: input.EstimatedHours,
		ProjectID:      input.ProjectID,
		Assignees:      assignees,
	}

	if err := tc.DB.Create(&task).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) GetTasks(c *gin.Context) {
	var tasks []models.Task

	query := tc.DB.Preload("Assignees")
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	includeProjectName := c.Query("include_project_name") == "true"
	if includeProjectName {
		query = query.Preload("Project")
	}

	// Insertion order; callers group by status themselves.
	if err := query.Order("id").Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if includeProjectName {
		for i := range tasks {
			if tasks[i].Project != nil {
				tasks[i].ProjectName = tasks[i].Project.Name
			}
		}
	}

	c.JSON(http.StatusOK, tasks)
}

func (tc *TaskController) GetTask(c *gin.Context) {
	id := c.Param("id")

	var task models.Task
	if err := tc.DB.Preload("Assignees").Preload("Project").First(&task, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTask edits plain task fields. A status in the payload is not an
// ordinary field: it is routed through the transition authority, and the
// response then carries the transition outcome.
func (tc *TaskController) UpdateTask(c *gin.Context) {
	id := c.Param("id")

	var task models.Task
	if err := tc.DB.First(&task, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	var input taskInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = *input.EstimatedHours
	}
	if input.Deadline != nil {
		deadline, ok := parseDeadline(c, input.Deadline)
		if !ok {
			return
		}
		task.Deadline = deadline
	}
	if input.ProjectID != nil {
		var project models.Project
		if err := tc.DB.First(&project, *input.ProjectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		task.ProjectID = *input.ProjectID
	}
	if input.AssigneeIDs != nil {
		assignees, ok := tc.loadAssignees(c, input.AssigneeIDs)
		if !ok {
			return
		}
		if err := tc.DB.Model(&task).Association("Assignees").Replace(assignees); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := tc.DB.Omit("Assignees").Save(&task).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Status != nil && *input.Status != task.Status {
		tc.attemptTransition(c, task, *input.Status)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus is the dedicated transition endpoint.
func (tc *TaskController) UpdateTaskStatus(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		Status constants.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task models.Task
	if err := tc.DB.First(&task, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	tc.attemptTransition(c, task, input.Status)
}

// attemptTransition is the single writer of status and status_request.
// The role comes from the session, never the payload. Applied responds
// 200, a recorded request responds 202 Accepted, anything off the
// forward chain responds 400.
func (tc *TaskController) attemptTransition(c *gin.Context, task models.Task, target constants.TaskStatus) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not resolve actor"})
		return
	}

	outcome, err := workflow.Decide(actor.Role, task.Status, target)
	if errors.Is(err, workflow.ErrUnauthorized) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch outcome {
	case workflow.OutcomeApplied:
		event := models.TaskEvent{
			ID:         uuid.NewString(),
			TaskID:     task.ID,
			FromStatus: task.Status,
			ToStatus:   target,
			ActorID:    actor.UserID,
		}
		err = tc.DB.Transaction(func(tx *gorm.DB) error {
			// Guarding on the status we validated against keeps
			// concurrent calls to at most one committed decision: a
			// racing call that commits first makes this write a no-op.
			res := tx.Model(&models.Task{}).
				Where("id = ? AND status = ?", task.ID, task.Status).
				Updates(map[string]interface{}{
					"status":         target,
					"status_request": nil,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStatusChanged
			}
			return tx.Create(&event).Error
		})
		if errors.Is(err, errStatusChanged) {
			c.JSON(http.StatusBadRequest, gin.H{"error": workflow.ErrInvalidTransition.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		tc.notify(event)
		tc.respondWithTask(c, http.StatusOK, workflow.OutcomeApplied, task.ID)

	case workflow.OutcomePending:
		res := tc.DB.Model(&models.Task{}).
			Where("id = ? AND status = ?", task.ID, task.Status).
			Update("status_request", target)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": workflow.ErrInvalidTransition.Error()})
			return
		}

		tc.respondWithTask(c, http.StatusAccepted, workflow.OutcomePending, task.ID)
	}
}

func (tc *TaskController) respondWithTask(c *gin.Context, code int, outcome workflow.Outcome, taskID uint) {
	var task models.Task
	if err := tc.DB.Preload("Assignees").First(&task, taskID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(code, gin.H{"outcome": outcome, "task": task})
}

func (tc *TaskController) notify(event models.TaskEvent) {
	if tc.Notify != nil {
		tc.Notify(event)
		return
	}
	if event.ToStatus == constants.TaskStatusDone {
		log.Printf("task %d reached DONE (event %s)", event.TaskID, event.ID)
	}
}

func (tc *TaskController) loadAssignees(c *gin.Context, ids []uint) ([]models.User, bool) {
	if len(ids) == 0 {
		return nil, true
	}
	var users []models.User
	if err := tc.DB.Find(&users, ids).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if len(users) != len(ids) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignee not found"})
		return nil, false
	}
	return users, true
}

func parseDeadline(c *gin.Context, raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline, expected YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}

func (tc *TaskController) DeleteTask(c *gin.Context) {
	id := c.Param("id")

	tc.DB.Delete(&models.Task{}, id)

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

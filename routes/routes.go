package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Pavitraraman/oneflow/constants"
	"github.com/Pavitraraman/oneflow/controllers"
	"github.com/Pavitraraman/oneflow/middleware"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	authController := controllers.AuthController{DB: db}
	userController := controllers.UserController{DB: db}
	projectController := controllers.ProjectController{DB: db}
	taskController := controllers.TaskController{DB: db}
	timesheetController := controllers.TimesheetController{DB: db}
	financeController := controllers.FinanceController{DB: db}
	statsController := controllers.StatsController{DB: db}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.POST("/auth/signup", authController.Signup)
	r.POST("/auth/login", authController.Login)

	authed := r.Group("/", middleware.AuthMiddleware())

	authed.GET("/auth/profile", authController.Profile)

	admin := middleware.RoleMiddleware(constants.RoleAdmin)
	managers := middleware.RoleMiddleware(constants.RoleAdmin, constants.RoleProjectManager)
	finance := middleware.RoleMiddleware(constants.RoleAdmin, constants.RoleFinance)

	authed.GET("/users", admin, userController.GetUsers)
	authed.PUT("/users/:id", admin, userController.UpdateUser)

	authed.POST("/projects", managers, projectController.CreateProject)
	authed.GET("/projects", projectController.GetProjects)
	authed.GET("/projects/:id", projectController.GetProject)
	authed.PUT("/projects/:id", managers, projectController.UpdateProject)
	authed.DELETE("/projects/:id", managers, projectController.DeleteProject)

	authed.POST("/tasks", managers, taskController.CreateTask)
	authed.GET("/tasks", taskController.GetTasks)
	authed.GET("/tasks/:id", taskController.GetTask)
	authed.PUT("/tasks/:id", taskController.UpdateTask)
	authed.PUT("/tasks/:id/status", taskController.UpdateTaskStatus)
	authed.DELETE("/tasks/:id", managers, taskController.DeleteTask)

	authed.POST("/timesheets", timesheetController.CreateTimesheet)
	authed.GET("/timesheets", timesheetController.GetTimesheets)

	authed.POST("/finance/entries", finance, financeController.LinkEntry)
	authed.GET("/finance/entries", finance, financeController.GetEntries)
	authed.POST("/documents", finance, financeController.CreateDocument)
	authed.GET("/documents", finance, financeController.GetDocuments)

	authed.GET("/stats/dashboard", statsController.Dashboard)

	return r
}

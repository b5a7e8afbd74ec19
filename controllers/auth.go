package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Pavitraraman/oneflow/constants"
	"github.com/Pavitraraman/oneflow/models"
	"github.com/Pavitraraman/oneflow/utils"
)

type AuthController struct {
	DB *gorm.DB
}

func (ac *AuthController) Signup(c *gin.Context) {
	var input struct {
		FirstName       string         `json:"first_name" binding:"required"`
		LastName        string         `json:"last_name" binding:"required"`
		WorkMail        string         `json:"work_mail" binding:"required,email"`
		Password        string         `json:"password" binding:"required"`
		ConfirmPassword string         `json:"confirm_password" binding:"required"`
		Role            constants.Role `json:"role"`
		ManagerID       *uint          `json:"manager_id"`
	}

	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Password != input.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	role := input.Role
	if role == "" {
		role = constants.RoleTeamMember
	}
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		WorkMail:  input.WorkMail,
		Password:  hashed,
		Role:      role,
		ManagerID: input.ManagerID,
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		WorkMail string `json:"work_mail" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := ac.DB.
		Where("work_mail = ?", input.WorkMail).
		First(&user).Error; err != nil {

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !utils.CheckPassword(input.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (ac *AuthController) Profile(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not resolve actor"})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, actor.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

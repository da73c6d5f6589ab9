package controllers

import (
	"net/http"
	"strings"
	"time"

	"citysense-be/middlewares"
	"citysense-be/models"
	"citysense-be/repository"
	authUtils "citysense-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AuthController serves registration, login and profile routes.
type AuthController struct {
	Users     repository.UserStore
	JWTSecret string
}

func NewAuthController(users repository.UserStore, jwtSecret string) *AuthController {
	return &AuthController{Users: users, JWTSecret: jwtSecret}
}

// Register handles user registration
func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"displayName" binding:"required,min=2,max=50"`
		Password    string `json:"password" binding:"required,min=6"`
		Role        string `json:"role"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(middlewares.BadRequest("Validation failed", middlewares.ValidationDetails(err)...))
		return
	}

	role := models.RoleCitizen
	if input.Role != "" {
		if !models.ValidRoles[models.UserRole(input.Role)] {
			c.Error(middlewares.BadRequest("Invalid role"))
			return
		}
		role = models.UserRole(input.Role)
	}

	ctx := c.Request.Context()
	if _, err := ac.Users.GetByEmail(ctx, input.Email); err == nil {
		c.Error(middlewares.BadRequest("User with this email already exists"))
		return
	} else if err != repository.ErrNotFound {
		c.Error(middlewares.Internal(err))
		return
	}

	user := models.User{
		Email:       input.Email,
		DisplayName: input.DisplayName,
		Password:    input.Password,
		Role:        role,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	if err := ac.Users.Create(ctx, &user); err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"uid":         user.ID.Hex(),
		"email":       user.Email,
		"displayName": user.DisplayName,
		"role":        user.Role,
		"createdAt":   user.CreatedAt,
	})
}

// Login verifies credentials and issues a bearer token
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(middlewares.BadRequest("Validation failed", middlewares.ValidationDetails(err)...))
		return
	}

	ctx := c.Request.Context()
	user, err := ac.Users.GetByEmail(ctx, input.Email)
	if err != nil || !user.ComparePassword(input.Password) {
		c.Error(middlewares.Unauthorized("Invalid credentials"))
		return
	}

	token, err := authUtils.GenerateToken(user.ID.Hex(), user.Email, ac.JWTSecret)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	if err := ac.Users.TouchLastLogin(ctx, user.ID.Hex()); err != nil {
		log.Warn().Err(err).Msg("failed to update last login")
	}

	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"uid":         user.ID.Hex(),
		"email":       user.Email,
		"displayName": user.DisplayName,
		"role":        user.Role,
	})
}

// GetProfile returns the authenticated user's record
func (ac *AuthController) GetProfile(c *gin.Context) {
	uid := c.GetString(middlewares.UserIDKey)

	user, err := ac.Users.GetByID(c.Request.Context(), uid)
	if err != nil {
		c.Error(middlewares.FromStoreError(err, "User not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":            user.ID.Hex(),
		"email":          user.Email,
		"displayName":    user.DisplayName,
		"role":           user.Role,
		"createdAt":      user.CreatedAt,
		"issuesReported": user.IssuesReported,
		"issuesUpvoted":  user.IssuesUpvoted,
	})
}

// UpdateProfile lets a user change their display name
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middlewares.UserIDKey)

	var input struct {
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(middlewares.BadRequest("Validation failed", middlewares.ValidationDetails(err)...))
		return
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if len(displayName) < 2 || len(displayName) > 50 {
		c.Error(middlewares.BadRequest("Display name must be between 2 and 50 characters"))
		return
	}

	if err := ac.Users.UpdateDisplayName(c.Request.Context(), uid, displayName); err != nil {
		c.Error(middlewares.FromStoreError(err, "User not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// VerifyToken confirms the bearer token and reports the caller's role
func (ac *AuthController) VerifyToken(c *gin.Context) {
	uid := c.GetString(middlewares.UserIDKey)
	email := c.GetString(middlewares.UserEmail)

	role := models.RoleCitizen
	if user, err := ac.Users.GetByID(c.Request.Context(), uid); err == nil {
		role = user.Role
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":      uid,
		"email":    email,
		"role":     role,
		"verified": true,
	})
}

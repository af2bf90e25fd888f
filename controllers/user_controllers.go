package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/models"
	"github.com/yeremiapane/barpos/services"
	"github.com/yeremiapane/barpos/utils"
)

type UserController struct {
	DB        *gorm.DB
	Directory *services.DirectoryService
}

func NewUserController(db *gorm.DB, directory *services.DirectoryService) *UserController {
	return &UserController{DB: db, Directory: directory}
}

// GetAllUsers -> active staff, by name. The front-end shows this list at
// startup so whoever is working can be attributed on new orders.
func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, err := uc.Directory.ListUsers()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of users", users)
}

// CreateUser -> add a staff member
func (uc *UserController) CreateUser(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch req.Role {
	case services.RoleWaiter, services.RoleCashier, services.RoleAdmin:
	default:
		utils.RespondError(c, http.StatusBadRequest, services.ErrInvalidArgument)
		return
	}

	user := models.User{
		Name:   req.Name,
		Role:   req.Role,
		Active: true,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	utils.InfoLogger.Printf("New user: %s (role=%s)", user.Name, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

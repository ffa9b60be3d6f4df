package handlers

import (
	"net/http"
	"time"

	"autoparts-backend/models"
	"autoparts-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB *gorm.DB
}

func userPayload(user models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"lastLogin": user.LastLogin,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "اطلاعات وارد شده صحیح نیست",
			"errors":  utils.SanitizeValidationError(err),
		})
		return
	}

	// Unknown email, inactive account and wrong password all answer
	// with the same message to avoid account enumeration.
	var user models.User
	if err := h.DB.Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "ایمیل یا رمز عبور اشتباه است"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "ایمیل یا رمز عبور اشتباه است"})
		return
	}

	now := time.Now()
	if err := h.DB.Model(&user).UpdateColumn("last_login", &now).Error; err != nil {
		serverError(c)
		return
	}
	user.LastLogin = &now

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		serverError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ورود موفق",
		"data": gin.H{
			"token": token,
			"user":  userPayload(user),
		},
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := c.MustGet("user").(models.User)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"user": userPayload(user)},
	})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "اطلاعات وارد شده صحیح نیست",
			"errors":  utils.SanitizeValidationError(err),
		})
		return
	}

	user := c.MustGet("user").(models.User)

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "رمز عبور فعلی اشتباه است"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		serverError(c)
		return
	}

	if err := h.DB.Model(&user).UpdateColumn("password", string(hashedPassword)).Error; err != nil {
		serverError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "رمز عبور با موفقیت تغییر کرد"})
}

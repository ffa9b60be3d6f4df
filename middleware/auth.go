package middleware

import (
	"errors"
	"net/http"
	"strings"

	"autoparts-backend/models"
	"autoparts-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AuthMiddleware verifies the bearer token and resolves the acting
// user from the database. A token whose user has been removed or
// deactivated is rejected even before its expiry.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "دسترسی غیرمجاز - توکن یافت نشد"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "دسترسی غیرمجاز - توکن یافت نشد"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			message := "توکن نامعتبر است"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "توکن منقضی شده است"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
			c.Abort()
			return
		}

		var user models.User
		if err := db.Where("id = ? AND is_active = ?", claims.UserID, true).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "دسترسی غیرمجاز - کاربر یافت نشد"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("user_role", user.Role)
		c.Next()
	}
}

// AdminMiddleware requires an admin or super_admin role; super_admin
// satisfies every admin gate.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || (role != "admin" && role != "super_admin") {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "دسترسی محدود - فقط ادمین‌ها"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SuperAdminMiddleware requires specifically the super_admin role.
func SuperAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != "super_admin" {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "دسترسی محدود - فقط سوپر ادمین"})
			c.Abort()
			return
		}
		c.Next()
	}
}

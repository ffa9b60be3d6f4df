package routes

import (
	"net/http"
	"time"

	"autoparts-backend/handlers"
	"autoparts-backend/middleware"
	"autoparts-backend/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes wires all API routes onto the router.
func SetupRoutes(r *gin.Engine, db *gorm.DB, storageClient storage.Client) {
	authHandler := &handlers.AuthHandler{DB: db}
	categoryHandler := &handlers.CategoryHandler{DB: db, Storage: storageClient}
	productHandler := &handlers.ProductHandler{DB: db, Storage: storageClient}
	companyInfoHandler := &handlers.CompanyInfoHandler{DB: db, Storage: storageClient}

	limiter := middleware.NewRateLimiter(100, 15*time.Minute)

	api := r.Group("/api")
	api.Use(limiter.Middleware())
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "سرور در حال اجرا است"})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(db))
			{
				protected.GET("/me", authHandler.Me)
				protected.POST("/change-password", authHandler.ChangePassword)
			}
		}

		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)

			admin := categories.Group("/admin")
			admin.Use(middleware.AuthMiddleware(db), middleware.AdminMiddleware())
			{
				admin.GET("/all", categoryHandler.GetAdminCategories)
				admin.POST("", categoryHandler.CreateCategory)
				admin.PUT("/:id", categoryHandler.UpdateCategory)
				admin.DELETE("/:id", categoryHandler.DeleteCategory)
			}

			categories.GET("/:slug", categoryHandler.GetCategoryBySlug)
		}

		products := api.Group("/products")
		{
			products.GET("", productHandler.GetProducts)

			admin := products.Group("/admin")
			admin.Use(middleware.AuthMiddleware(db), middleware.AdminMiddleware())
			{
				admin.GET("", productHandler.GetAdminProducts)
				admin.POST("", productHandler.CreateProduct)
				admin.PUT("/:id", productHandler.UpdateProduct)
				admin.DELETE("/:id", productHandler.DeleteProduct)
				admin.DELETE("/:id/image/:index", productHandler.DeleteProductImage)
			}

			products.GET("/:slug", productHandler.GetProductBySlug)
			products.GET("/:slug/related", productHandler.GetRelatedProducts)
		}

		companyInfo := api.Group("/company-info")
		{
			companyInfo.GET("", companyInfoHandler.GetCompanyInfo)

			admin := companyInfo.Group("/admin")
			admin.Use(middleware.AuthMiddleware(db), middleware.AdminMiddleware())
			{
				admin.PUT("", companyInfoHandler.UpdateCompanyInfo)
			}
		}
	}
}

package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"autoparts-backend/models"
	"autoparts-backend/storage"
	"autoparts-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	DB      *gorm.DB
	Storage storage.Client
}

// GetCategories returns all active categories with a live count of
// active products, for the public storefront. The dataset is small, so
// there is no pagination.
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.DB.Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		serverError(c)
		return
	}

	for i := range categories {
		count, err := categories[i].CountActiveProducts(h.DB)
		if err != nil {
			serverError(c)
			return
		}
		categories[i].ProductsCount = count
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"categories": categories,
			"total":      len(categories),
		},
	})
}

// GetCategoryBySlug returns a single active category and persists its
// recomputed product count as a side effect of the read.
func (h *CategoryHandler) GetCategoryBySlug(c *gin.Context) {
	var category models.Category
	if err := h.DB.Where("slug = ? AND is_active = ?", c.Param("slug"), true).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "دسته‌بندی یافت نشد"})
		return
	}

	count, err := category.CountActiveProducts(h.DB)
	if err != nil {
		serverError(c)
		return
	}
	if err := h.DB.Model(&category).UpdateColumn("products_count", count).Error; err != nil {
		serverError(c)
		return
	}
	category.ProductsCount = count

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"category": category}})
}

// GetAdminCategories lists all categories (active and inactive) with
// search, status filter and pagination.
func (h *CategoryHandler) GetAdminCategories(c *gin.Context) {
	page, limit, offset := pageParams(c, 10, 100)

	query := h.DB.Model(&models.Category{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	switch c.DefaultQuery("status", "all") {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		serverError(c)
		return
	}

	var categories []models.Category
	if err := query.Order("sort_order ASC, name ASC").Offset(offset).Limit(limit).Find(&categories).Error; err != nil {
		serverError(c)
		return
	}

	for i := range categories {
		count, err := categories[i].CountActiveProducts(h.DB)
		if err != nil {
			serverError(c)
			return
		}
		categories[i].ProductsCount = count
		h.DB.Model(&categories[i]).UpdateColumn("products_count", count)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"categories": categories,
			"pagination": paginationMeta(total, page, limit, len(categories)),
		},
	})
}

func validateCategoryFields(name, slug, description string, nameRequired bool) []fieldError {
	var errs []fieldError

	if nameRequired && name == "" {
		errs = append(errs, fieldError{"name", "نام دسته‌بندی الزامی است"})
	}
	if len([]rune(name)) > 100 {
		errs = append(errs, fieldError{"name", "نام دسته‌بندی نباید بیشتر از ۱۰۰ کاراکتر باشد"})
	}
	if slug != "" && !utils.IsValidSlug(slug) {
		errs = append(errs, fieldError{"slug", "slug باید فقط شامل حروف فارسی، انگلیسی، اعداد و خط تیره باشد"})
	}
	if len([]rune(description)) > 500 {
		errs = append(errs, fieldError{"description", "توضیحات نباید بیشتر از ۵۰۰ کاراکتر باشد"})
	}

	return errs
}

// CreateCategory creates a category from a multipart form with an
// optional single `image` file. All validation runs before the file is
// persisted; a failed database write deletes the stored file again.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	slug := strings.TrimSpace(c.PostForm("slug"))
	description := strings.TrimSpace(c.PostForm("description"))
	sortOrder := utils.FormInt(c.PostForm("sortOrder"))
	isActive := true
	if v, ok := c.GetPostForm("isActive"); ok {
		isActive = utils.FormBool(v)
	}

	if errs := validateCategoryFields(name, slug, description, true); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "اطلاعات وارد شده صحیح نیست",
			"errors":  errs,
		})
		return
	}

	imageFile, err := c.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "خطا در پردازش فرم"})
		return
	}
	if imageFile != nil {
		if err := utils.ValidateImageUpload(imageFile); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
	}

	var existing models.Category
	if err := h.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "دسته‌بندی با این نام قبلاً وجود دارد"})
		return
	}
	if slug != "" {
		if err := h.DB.Where("slug = ?", slug).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "slug وارد شده قبلاً استفاده شده است"})
			return
		}
	} else {
		slug, err = uniqueSlug(h.DB, &models.Category{}, utils.MakeSlug(name, "دسته-بندی"), uuid.Nil)
		if err != nil {
			serverError(c)
			return
		}
	}

	imageURL := ""
	if imageFile != nil {
		file, err := imageFile.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "تصویر نامعتبر است"})
			return
		}
		imageURL, err = h.Storage.SaveCategoryImage(file, imageFile.Filename)
		file.Close()
		if err != nil {
			serverError(c)
			return
		}
	}

	category := models.Category{
		Name:        name,
		Slug:        slug,
		Description: description,
		Image:       imageURL,
		SortOrder:   sortOrder,
		IsActive:    isActive,
	}

	if err := h.DB.Create(&category).Error; err != nil {
		if imageURL != "" {
			if cleanupErr := h.Storage.DeleteFile(imageURL); cleanupErr != nil {
				log.Printf("Failed to clean up orphaned category image %s: %v", imageURL, cleanupErr)
			}
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Two concurrent creates can race to the same name or slug;
			// the unique index decides and the loser lands here.
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "نام یا slug تکراری است"})
			return
		}
		log.Printf("Create category error: %v", err)
		serverError(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "دسته‌بندی با موفقیت ایجاد شد",
		"data":    gin.H{"category": category},
	})
}

// UpdateCategory applies a partial update. A newly uploaded image
// replaces the previous file, which is deleted after the record is
// saved.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "شناسه نامعتبر است"})
		return
	}

	var category models.Category
	if err := h.DB.Where("id = ?", id).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "دسته‌بندی یافت نشد"})
		return
	}

	name := category.Name
	if v, ok := c.GetPostForm("name"); ok {
		name = strings.TrimSpace(v)
	}
	slug := category.Slug
	if v, ok := c.GetPostForm("slug"); ok && strings.TrimSpace(v) != "" {
		slug = strings.TrimSpace(v)
	}
	description := category.Description
	if v, ok := c.GetPostForm("description"); ok {
		description = strings.TrimSpace(v)
	}

	if errs := validateCategoryFields(name, slug, description, true); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "اطلاعات وارد شده صحیح نیست",
			"errors":  errs,
		})
		return
	}

	var existing models.Category
	if name != category.Name {
		if err := h.DB.Where("name = ? AND id <> ?", name, category.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "دسته‌بندی با این نام قبلاً وجود دارد"})
			return
		}
	}
	if slug != category.Slug {
		if err := h.DB.Where("slug = ? AND id <> ?", slug, category.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "slug وارد شده قبلاً استفاده شده است"})
			return
		}
	}

	imageFile, err := c.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		imageFile = nil
	}
	if imageFile != nil {
		if err := utils.ValidateImageUpload(imageFile); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
	}

	category.Name = name
	category.Slug = slug
	category.Description = description
	if v, ok := c.GetPostForm("sortOrder"); ok {
		category.SortOrder = utils.FormInt(v)
	}
	if v, ok := c.GetPostForm("isActive"); ok {
		category.IsActive = utils.FormBool(v)
	}

	oldImage := category.Image
	newImage := ""
	if imageFile != nil {
		file, err := imageFile.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "تصویر نامعتبر است"})
			return
		}
		newImage, err = h.Storage.SaveCategoryImage(file, imageFile.Filename)
		file.Close()
		if err != nil {
			serverError(c)
			return
		}
		category.Image = newImage
	}

	if err := h.DB.Save(&category).Error; err != nil {
		if newImage != "" {
			if cleanupErr := h.Storage.DeleteFile(newImage); cleanupErr != nil {
				log.Printf("Failed to clean up orphaned category image %s: %v", newImage, cleanupErr)
			}
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "نام یا slug تکراری است"})
			return
		}
		log.Printf("Update category error: %v", err)
		serverError(c)
		return
	}

	if newImage != "" && oldImage != "" && oldImage != newImage {
		if err := h.Storage.DeleteFile(oldImage); err != nil {
			log.Printf("Failed to delete replaced category image %s: %v", oldImage, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "دسته‌بندی با موفقیت به‌روزرسانی شد",
		"data":    gin.H{"category": category},
	})
}

// DeleteCategory removes a category. Deletion is blocked while any
// product still references it; the error reports the blocking count.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "شناسه نامعتبر است"})
		return
	}

	var category models.Category
	if err := h.DB.Where("id = ?", id).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "دسته‌بندی یافت نشد"})
		return
	}

	var productsCount int64
	if err := h.DB.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&productsCount).Error; err != nil {
		serverError(c)
		return
	}
	if productsCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": fmt.Sprintf("نمی‌توان دسته‌بندی را حذف کرد. %d محصول در این دسته وجود دارد", productsCount),
		})
		return
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		serverError(c)
		return
	}

	if category.Image != "" {
		if err := h.Storage.DeleteFile(category.Image); err != nil {
			log.Printf("Failed to delete category image %s: %v", category.Image, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "دسته‌بندی با موفقیت حذف شد"})
}

package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"autoparts-backend/models"
	"autoparts-backend/storage"
	"autoparts-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductHandler struct {
	DB      *gorm.DB
	Storage storage.Client
}

// publicSortColumns whitelists the sort values accepted from the
// storefront, mongoose-style (leading dash means descending).
var publicSortColumns = map[string]string{
	"-createdAt":  "created_at DESC",
	"createdAt":   "created_at ASC",
	"name":        "name ASC",
	"-name":       "name DESC",
	"-viewsCount": "views_count DESC",
	"sortOrder":   "sort_order ASC",
}

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// GetProducts returns active products for the public storefront with
// category/search/featured filters and pagination.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	page, limit, offset := pageParams(c, 12, 50)

	query := h.DB.Model(&models.Product{}).Where("is_active = ?", true)

	if category := c.Query("category"); category != "" {
		categoryID, err := uuid.Parse(category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "شناسه دسته‌بندی نامعتبر است"})
			return
		}
		query = query.Where("category_id = ?", categoryID)
	}
	if c.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(brand) LIKE LOWER(?) OR LOWER(part_number) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}

	order, ok := publicSortColumns[c.DefaultQuery("sort", "-createdAt")]
	if !ok {
		order = publicSortColumns["-createdAt"]
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		serverError(c)
		return
	}

	var products []models.Product
	if err := query.Order(order).Offset(offset).Limit(limit).
		Preload("Category").
		Preload("Images", preloadImages).
		Find(&products).Error; err != nil {
		serverError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"products":   products,
			"pagination": paginationMeta(total, page, limit, len(products)),
		},
	})
}

// GetProductBySlug returns a single active product and increments its
// view counter as a side effect of the read.
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	var product models.Product
	if err := h.DB.Where("slug = ? AND is_active = ?", c.Param("slug"), true).
		Preload("Category").
		Preload("Images", preloadImages).
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "محصول یافت نشد"})
		return
	}

	if err := h.DB.Model(&product).UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error; err != nil {
		serverError(c)
		return
	}
	product.ViewsCount++

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"product": product}})
}

// GetRelatedProducts returns up to 4 other active products from the
// same category. No relevance ranking beyond the category match.
func (h *ProductHandler) GetRelatedProducts(c *gin.Context) {
	var product models.Product
	if err := h.DB.Where("slug = ? AND is_active = ?", c.Param("slug"), true).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "محصول یافت نشد"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "4"))
	if limit < 1 || limit > 12 {
		limit = 4
	}

	var related []models.Product
	if err := h.DB.Where("category_id = ? AND id <> ? AND is_active = ?", product.CategoryID, product.ID, true).
		Order("sort_order ASC, created_at DESC").
		Limit(limit).
		Preload("Category").
		Preload("Images", preloadImages).
		Find(&related).Error; err != nil {
		serverError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"products": related}})
}

// GetAdminProducts lists all products regardless of active status with
// search, category, status and featured filters.
func (h *ProductHandler) GetAdminProducts(c *gin.Context) {
	page, limit, offset := pageParams(c, 50, 100)

	query := h.DB.Model(&models.Product{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(brand) LIKE LOWER(?) OR LOWER(part_number) LIKE LOWER(?) OR LOWER(car_type) LIKE LOWER(?)",
			pattern, pattern, pattern, pattern,
		)
	}
	if category := c.Query("category"); category != "" {
		categoryID, err := uuid.Parse(category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "شناسه دسته‌بندی نامعتبر است"})
			return
		}
		query = query.Where("category_id = ?", categoryID)
	}
	switch c.DefaultQuery("status", "all") {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}
	switch c.DefaultQuery("featured", "all") {
	case "true":
		query = query.Where("is_featured = ?", true)
	case "false":
		query = query.Where("is_featured = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		serverError(c)
		return
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).
		Preload("Category").
		Preload("Images", preloadImages).
		Find(&products).Error; err != nil {
		serverError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"products":   products,
			"pagination": paginationMeta(total, page, limit, len(products)),
		},
	})
}

func validateProductFields(name, slug, description, shortDescription, brand, carType, partNumber string) []fieldError {
	var errs []fieldError

	if name == "" {
		errs = append(errs, fieldError{"name", "نام محصول الزامی است"})
	}
	if len([]rune(name)) > 200 {
		errs = append(errs, fieldError{"name", "نام محصول نباید بیشتر از ۲۰۰ کاراکتر باشد"})
	}
	if slug != "" && !utils.IsValidSlug(slug) {
		errs = append(errs, fieldError{"slug", "slug باید فقط شامل حروف فارسی، انگلیسی، اعداد و خط تیره باشد"})
	}
	if description == "" {
		errs = append(errs, fieldError{"description", "توضیحات الزامی است"})
	}
	if len([]rune(description)) > 15000 {
		errs = append(errs, fieldError{"description", "توضیحات نباید بیشتر از ۱۵۰۰۰ کاراکتر باشد"})
	}
	if len([]rune(shortDescription)) > 300 {
		errs = append(errs, fieldError{"shortDescription", "توضیحات کوتاه نباید بیشتر از ۳۰۰ کاراکتر باشد"})
	}
	if brand == "" {
		errs = append(errs, fieldError{"brand", "برند الزامی است"})
	}
	if carType == "" {
		errs = append(errs, fieldError{"carType", "نوع خودرو الزامی است"})
	}
	if partNumber == "" {
		errs = append(errs, fieldError{"partNumber", "شماره فنی الزامی است"})
	}

	return errs
}

// storeProductImages persists validated uploads in the order received
// and returns their URLs. On failure the already-stored files of the
// batch are deleted so no orphan survives.
func (h *ProductHandler) storeProductImages(files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err == nil {
			var url string
			url, err = h.Storage.SaveProductImage(file, fh.Filename)
			file.Close()
			if err == nil {
				urls = append(urls, url)
				continue
			}
		}
		h.deleteFiles(urls)
		return nil, err
	}
	return urls, nil
}

func (h *ProductHandler) deleteFiles(urls []string) {
	for _, url := range urls {
		if err := h.Storage.DeleteFile(url); err != nil {
			log.Printf("Failed to clean up orphaned product image %s: %v", url, err)
		}
	}
}

// CreateProduct creates a product from a multipart form carrying text
// fields plus optional `images` files. Validation (fields, category
// reference, upload batch) runs before any file is written; a failed
// database write deletes the stored files again.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	slug := strings.TrimSpace(c.PostForm("slug"))
	description := strings.TrimSpace(c.PostForm("description"))
	shortDescription := strings.TrimSpace(c.PostForm("shortDescription"))
	brand := strings.TrimSpace(c.PostForm("brand"))
	carType := strings.TrimSpace(c.PostForm("carType"))
	partNumber := strings.TrimSpace(c.PostForm("partNumber"))
	sortOrder := utils.FormInt(c.PostForm("sortOrder"))
	isFeatured := utils.FormBool(c.PostForm("isFeatured"))
	isActive := true
	if v, ok := c.GetPostForm("isActive"); ok {
		isActive = utils.FormBool(v)
	}

	if errs := validateProductFields(name, slug, description, shortDescription, brand, carType, partNumber); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "اطلاعات وارد شده صحیح نیست",
			"errors":  errs,
		})
		return
	}

	categoryID, err := uuid.Parse(c.PostForm("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "دسته‌بندی یافت نشد"})
		return
	}
	if err := h.DB.First(&models.Category{}, "id = ?", categoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "دسته‌بندی یافت نشد"})
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}
	if err := utils.ValidateImageBatch(files, utils.MaxProductImages); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if slug != "" {
		var existing models.Product
		if err := h.DB.Where("slug = ?", slug).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "slug وارد شده قبلاً استفاده شده است"})
			return
		}
	} else {
		slug, err = uniqueSlug(h.DB, &models.Product{}, utils.MakeSlug(name, "محصول"), uuid.Nil)
		if err != nil {
			serverError(c)
			return
		}
	}

	urls, err := h.storeProductImages(files)
	if err != nil {
		serverError(c)
		return
	}

	images := make([]models.ProductImage, len(urls))
	for i, url := range urls {
		images[i] = models.ProductImage{
			URL:      url,
			Alt:      name,
			IsMain:   i == 0,
			Position: i,
		}
	}

	product := models.Product{
		Name:             name,
		Slug:             slug,
		Description:      description,
		ShortDescription: shortDescription,
		CategoryID:       categoryID,
		PartNumber:       partNumber,
		Brand:            brand,
		CarType:          carType,
		SortOrder:        sortOrder,
		IsFeatured:       isFeatured,
		IsActive:         isActive,
		Images:           images,
	}

	if err := h.DB.Create(&product).Error; err != nil {
		h.deleteFiles(urls)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "slug تکراری است"})
			return
		}
		log.Printf("Create product error: %v", err)
		serverError(c)
		return
	}

	h.DB.Preload("Category").Preload("Images", preloadImages).First(&product, product.ID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "محصول با موفقیت ایجاد شد",
		"data":    gin.H{"product": product},
	})
}

// UpdateProduct applies a partial multipart update. Newly uploaded
// images are appended to the existing list, never replacing it; when
// the product had no images the first new one becomes the main image.
// A `mainImageIndex` field re-selects the main image by position.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "شناسه نامعتبر است"})
		return
	}

	var product models.Product
	if err := h.DB.Preload("Images", preloadImages).Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "محصول یافت نشد"})
		return
	}

	name := product.Name
	if v, ok := c.GetPostForm("name"); ok {
		name = strings.TrimSpace(v)
	}
	slug := product.Slug
	if v, ok := c.GetPostForm("slug"); ok && strings.TrimSpace(v) != "" {
		slug = strings.TrimSpace(v)
	}
	description := product.Description
	if v, ok := c.GetPostForm("description"); ok {
		description = strings.TrimSpace(v)
	}
	shortDescription := product.ShortDescription
	if v, ok := c.GetPostForm("shortDescription"); ok {
		shortDescription = strings.TrimSpace(v)
	}
	brand := product.Brand
	if v, ok := c.GetPostForm("brand"); ok {
		brand = strings.TrimSpace(v)
	}
	carType := product.CarType
	if v, ok := c.GetPostForm("carType"); ok {
		carType = strings.TrimSpace(v)
	}
	partNumber := product.PartNumber
	if v, ok := c.GetPostForm("partNumber"); ok {
		partNumber = strings.TrimSpace(v)
	}

	if errs := validateProductFields(name, slug, description, shortDescription, brand, carType, partNumber); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "اطلاعات وارد شده صحیح نیست",
			"errors":  errs,
		})
		return
	}

	if slug != product.Slug {
		var existing models.Product
		if err := h.DB.Where("slug = ? AND id <> ?", slug, product.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "slug وارد شده قبلاً استفاده شده است"})
			return
		}
	}

	if v, ok := c.GetPostForm("category"); ok && v != "" {
		categoryID, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "دسته‌بندی یافت نشد"})
			return
		}
		if err := h.DB.First(&models.Category{}, "id = ?", categoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "دسته‌بندی یافت نشد"})
			return
		}
		product.CategoryID = categoryID
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}
	if err := utils.ValidateImageBatch(files, utils.MaxProductImages); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// Bounds-check the main image selection against the list as it will
	// look after the new uploads, before anything is written.
	mainIndex := -1
	if v, ok := c.GetPostForm("mainImageIndex"); ok {
		mainIndex = utils.FormInt(v)
		if mainIndex < 0 || mainIndex >= len(product.Images)+len(files) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "تصویر یافت نشد"})
			return
		}
	}

	product.Name = name
	product.Slug = slug
	product.Description = description
	product.ShortDescription = shortDescription
	product.Brand = brand
	product.CarType = carType
	product.PartNumber = partNumber
	if v, ok := c.GetPostForm("sortOrder"); ok {
		product.SortOrder = utils.FormInt(v)
	}
	if v, ok := c.GetPostForm("isFeatured"); ok {
		product.IsFeatured = utils.FormBool(v)
	}
	if v, ok := c.GetPostForm("isActive"); ok {
		product.IsActive = utils.FormBool(v)
	}

	urls, err := h.storeProductImages(files)
	if err != nil {
		serverError(c)
		return
	}

	newImages := make([]models.ProductImage, len(urls))
	for i, url := range urls {
		newImages[i] = models.ProductImage{
			ProductID: product.ID,
			URL:       url,
			Alt:       name,
			IsMain:    len(product.Images) == 0 && i == 0,
			Position:  len(product.Images) + i,
		}
	}

	if err := h.DB.Omit(clause.Associations).Save(&product).Error; err != nil {
		h.deleteFiles(urls)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "slug تکراری است"})
			return
		}
		log.Printf("Update product error: %v", err)
		serverError(c)
		return
	}

	if len(newImages) > 0 {
		if err := h.DB.Create(&newImages).Error; err != nil {
			h.deleteFiles(urls)
			serverError(c)
			return
		}
	}

	if mainIndex >= 0 {
		if err := h.setMainImage(product.ID, mainIndex); err != nil {
			serverError(c)
			return
		}
	}

	h.DB.Preload("Category").Preload("Images", preloadImages).First(&product, product.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "محصول با موفقیت به‌روزرسانی شد",
		"data":    gin.H{"product": product},
	})
}

// setMainImage clears the main flag across the product's images and
// sets it on the entry at the given position.
func (h *ProductHandler) setMainImage(productID uuid.UUID, position int) error {
	if err := h.DB.Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Update("is_main", false).Error; err != nil {
		return err
	}
	return h.DB.Model(&models.ProductImage{}).
		Where("product_id = ? AND position = ?", productID, position).
		Update("is_main", true).Error
}

// DeleteProduct removes the product's image files from storage and
// then deletes the record together with its image rows.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "شناسه نامعتبر است"})
		return
	}

	var product models.Product
	if err := h.DB.Preload("Images", preloadImages).Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "محصول یافت نشد"})
		return
	}

	for _, image := range product.Images {
		if err := h.Storage.DeleteFile(image.URL); err != nil {
			log.Printf("Failed to delete product image %s: %v", image.URL, err)
		}
	}

	if err := h.DB.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
		serverError(c)
		return
	}
	if err := h.DB.Delete(&product).Error; err != nil {
		serverError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "محصول حذف شد"})
}

// DeleteProductImage removes a single image by its position in the
// ordered list. Removing the main image promotes the new first entry.
func (h *ProductHandler) DeleteProductImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "شناسه نامعتبر است"})
		return
	}

	var product models.Product
	if err := h.DB.Preload("Images", preloadImages).Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "محصول یافت نشد"})
		return
	}

	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 || idx >= len(product.Images) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "تصویر یافت نشد"})
		return
	}

	target := product.Images[idx]

	if err := h.DB.Delete(&target).Error; err != nil {
		serverError(c)
		return
	}
	// Close the position gap left by the removed entry.
	if err := h.DB.Model(&models.ProductImage{}).
		Where("product_id = ? AND position > ?", product.ID, target.Position).
		UpdateColumn("position", gorm.Expr("position - 1")).Error; err != nil {
		serverError(c)
		return
	}
	if target.IsMain && len(product.Images) > 1 {
		if err := h.DB.Model(&models.ProductImage{}).
			Where("product_id = ? AND position = ?", product.ID, 0).
			Update("is_main", true).Error; err != nil {
			serverError(c)
			return
		}
	}

	if err := h.Storage.DeleteFile(target.URL); err != nil {
		log.Printf("Failed to delete product image %s: %v", target.URL, err)
	}

	h.DB.Preload("Category").Preload("Images", preloadImages).First(&product, product.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "تصویر حذف شد",
		"data":    gin.H{"product": product},
	})
}

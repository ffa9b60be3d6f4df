package handlers

import (
	"log"
	"net/http"
	"strings"

	"autoparts-backend/models"
	"autoparts-backend/storage"
	"autoparts-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CompanyInfoHandler struct {
	DB      *gorm.DB
	Storage storage.Client
}

// loadOrCreate returns the singleton row, creating an empty one on the
// first read so the storefront always has something to render.
func (h *CompanyInfoHandler) loadOrCreate() (models.CompanyInfo, error) {
	var info models.CompanyInfo
	err := h.DB.First(&info).Error
	if err == nil {
		return info, nil
	}
	if err != gorm.ErrRecordNotFound {
		return info, err
	}

	info = models.CompanyInfo{Name: "فروشگاه قطعات خودرو"}
	if err := h.DB.Create(&info).Error; err != nil {
		return info, err
	}
	return info, nil
}

func (h *CompanyInfoHandler) GetCompanyInfo(c *gin.Context) {
	info, err := h.loadOrCreate()
	if err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"companyInfo": info}})
}

// UpdateCompanyInfo applies a partial multipart update to the singleton
// row. A `logo` file replaces the stored logo; the previous file is
// deleted only after the new one is safely persisted.
func (h *CompanyInfoHandler) UpdateCompanyInfo(c *gin.Context) {
	info, err := h.loadOrCreate()
	if err != nil {
		serverError(c)
		return
	}

	fields := map[string]*string{
		"name":         &info.Name,
		"slogan":       &info.Slogan,
		"description":  &info.Description,
		"phone":        &info.Phone,
		"email":        &info.Email,
		"address":      &info.Address,
		"city":         &info.City,
		"postalCode":   &info.PostalCode,
		"workingHours": &info.WorkingHours,
		"instagram":    &info.Instagram,
		"telegram":     &info.Telegram,
		"whatsapp":     &info.WhatsApp,
	}
	for key, dst := range fields {
		if v, ok := c.GetPostForm(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if len([]rune(info.Description)) > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "اطلاعات وارد شده صحیح نیست",
			"errors":  []fieldError{{"description", "توضیحات نباید بیشتر از ۱۰۰۰ کاراکتر باشد"}},
		})
		return
	}

	oldLogo, newLogo := "", ""
	if fh, err := c.FormFile("logo"); err == nil {
		if err := utils.ValidateImageUpload(fh); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		file, err := fh.Open()
		if err != nil {
			serverError(c)
			return
		}
		url, err := h.Storage.SaveCompanyImage(file, fh.Filename)
		file.Close()
		if err != nil {
			serverError(c)
			return
		}
		oldLogo, newLogo = info.Logo, url
		info.Logo = url
	}

	if err := h.DB.Save(&info).Error; err != nil {
		if newLogo != "" {
			if err := h.Storage.DeleteFile(newLogo); err != nil {
				log.Printf("Failed to clean up orphaned logo %s: %v", newLogo, err)
			}
		}
		serverError(c)
		return
	}

	if oldLogo != "" && oldLogo != info.Logo {
		if err := h.Storage.DeleteFile(oldLogo); err != nil {
			log.Printf("Failed to delete replaced logo %s: %v", oldLogo, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "اطلاعات شرکت با موفقیت به‌روزرسانی شد",
		"data":    gin.H{"companyInfo": info},
	})
}

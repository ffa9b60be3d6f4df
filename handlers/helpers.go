package handlers

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fieldError is the per-field entry of the `errors` array in
// validation failure responses.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// pageParams reads page/limit query parameters with clamping.
func pageParams(c *gin.Context, defaultLimit, maxLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	offset = (page - 1) * limit
	return page, limit, offset
}

// paginationMeta builds the pagination block returned by list
// endpoints. count is the number of records on the current page.
func paginationMeta(total int64, page, limit, count int) gin.H {
	return gin.H{
		"total":       total,
		"totalPages":  int(math.Ceil(float64(total) / float64(limit))),
		"currentPage": page,
		"hasNext":     int64((page-1)*limit+count) < total,
		"hasPrev":     page > 1,
	}
}

// uniqueSlug probes the store for the derived slug, appending -1, -2, …
// until no other record holds it. Two concurrent creates may still
// race to the same candidate; the unique index resolves that and the
// loser surfaces as a conflict.
func uniqueSlug(db *gorm.DB, model interface{}, base string, excludeID uuid.UUID) (string, error) {
	candidate := base
	for counter := 1; ; counter++ {
		query := db.Model(model).Where("slug = ?", candidate)
		if excludeID != uuid.Nil {
			query = query.Where("id <> ?", excludeID)
		}

		var n int64
		if err := query.Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

func serverError(c *gin.Context) {
	c.JSON(500, gin.H{"success": false, "message": "خطای سرور"})
}

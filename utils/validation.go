package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AllowedImageContentTypes is the allow-list for uploaded images.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

const (
	defaultMaxUploadSize  = 5 << 20 // 5MB
	MaxProductImages      = 10
	MaxCategoryImages     = 1
	errInvalidFileType    = "فقط فایل‌های تصویری با فرمت JPG, JPEG, PNG, WEBP مجاز هستند"
	errFileTooLarge       = "حجم فایل بیش از حد مجاز است (حداکثر ۵ مگابایت)"
	errTooManyFilesFormat = "تعداد فایل‌ها بیش از حد مجاز است (حداکثر %d فایل)"
)

// MaxUploadSize reads MAX_FILE_SIZE (bytes) from the environment,
// defaulting to 5MB.
func MaxUploadSize() int64 {
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxUploadSize
}

// ValidateImageUpload checks content type, extension and size for a
// single uploaded file.
func ValidateImageUpload(fh *multipart.FileHeader) error {
	if fh.Size > MaxUploadSize() {
		return errors.New(errFileTooLarge)
	}

	ext := strings.ToLower(path.Ext(fh.Filename))
	contentType := fh.Header.Get("Content-Type")
	if !AllowedImageContentTypes[contentType] || !allowedImageExtensions[ext] {
		return errors.New(errInvalidFileType)
	}

	return nil
}

// ValidateImageBatch validates an entire upload batch before any file
// is persisted, so a rejected batch never leaves partial files behind.
func ValidateImageBatch(files []*multipart.FileHeader, maxFiles int) error {
	if len(files) > maxFiles {
		return fmt.Errorf(errTooManyFilesFormat, maxFiles)
	}
	for _, fh := range files {
		if err := ValidateImageUpload(fh); err != nil {
			return err
		}
	}
	return nil
}

// FormInt normalizes a multipart string field to an int, coercing
// non-numeric input to 0 rather than rejecting.
func FormInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

// FormBool normalizes a multipart string field to a bool. Multipart
// transport forces string encoding, so "true"/"false" are accepted and
// anything else maps to false.
func FormBool(value string) bool {
	return value == "true" || value == "1"
}

// SanitizeValidationError turns validator field errors into
// user-facing messages without leaking Go struct names.
func SanitizeValidationError(err error) []string {
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"اطلاعات وارد شده صحیح نیست"}
	}

	var messages []string
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s الزامی است", field))
		case "email":
			messages = append(messages, fmt.Sprintf("فرمت %s صحیح نیست", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s باید حداقل %s کاراکتر باشد", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s باید حداکثر %s کاراکتر باشد", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s نامعتبر است", field))
		}
	}

	if len(messages) == 0 {
		return []string{"اطلاعات وارد شده صحیح نیست"}
	}
	return messages
}

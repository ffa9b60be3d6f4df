package utils

import (
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"
	"testing"
)

func fileHeader(filename, contentType string, size int64) *multipart.FileHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", contentType)
	return &multipart.FileHeader{
		Filename: filename,
		Header:   h,
		Size:     size,
	}
}

func TestValidateImageUpload(t *testing.T) {
	if err := ValidateImageUpload(fileHeader("photo.jpg", "image/jpeg", 1024)); err != nil {
		t.Errorf("expected a small jpeg to pass, got %v", err)
	}
	if err := ValidateImageUpload(fileHeader("photo.webp", "image/webp", 1024)); err != nil {
		t.Errorf("expected a webp to pass, got %v", err)
	}
}

func TestValidateImageUploadRejectsType(t *testing.T) {
	if err := ValidateImageUpload(fileHeader("notes.pdf", "application/pdf", 1024)); err == nil {
		t.Error("expected a pdf to be rejected")
	}
	// Image content type with a non-image extension is rejected too.
	if err := ValidateImageUpload(fileHeader("script.exe", "image/jpeg", 1024)); err == nil {
		t.Error("expected a mismatched extension to be rejected")
	}
}

func TestValidateImageUploadRejectsOversize(t *testing.T) {
	err := ValidateImageUpload(fileHeader("big.jpg", "image/jpeg", 6<<20))
	if err == nil {
		t.Fatal("expected an oversized file to be rejected")
	}
	if !strings.Contains(err.Error(), "حجم فایل") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestMaxUploadSizeFromEnv(t *testing.T) {
	os.Setenv("MAX_FILE_SIZE", "1048576")
	defer os.Unsetenv("MAX_FILE_SIZE")

	if got := MaxUploadSize(); got != 1<<20 {
		t.Errorf("expected 1MB, got %d", got)
	}

	if err := ValidateImageUpload(fileHeader("big.jpg", "image/jpeg", 2<<20)); err == nil {
		t.Error("expected a file above the configured limit to be rejected")
	}
}

func TestValidateImageBatchTooMany(t *testing.T) {
	files := make([]*multipart.FileHeader, MaxProductImages+1)
	for i := range files {
		files[i] = fileHeader("img.jpg", "image/jpeg", 1024)
	}

	err := ValidateImageBatch(files, MaxProductImages)
	if err == nil {
		t.Fatal("expected an oversized batch to be rejected")
	}
	if !strings.Contains(err.Error(), "تعداد فایل‌ها") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestValidateImageBatchRejectsOnAnyBadFile(t *testing.T) {
	files := []*multipart.FileHeader{
		fileHeader("ok.jpg", "image/jpeg", 1024),
		fileHeader("bad.txt", "text/plain", 1024),
	}

	if err := ValidateImageBatch(files, MaxProductImages); err == nil {
		t.Error("expected the batch to be rejected when any file is invalid")
	}
}

func TestFormInt(t *testing.T) {
	cases := map[string]int{
		"5":    5,
		" 12 ": 12,
		"-3":   -3,
		"abc":  0,
		"":     0,
		"1.5":  0,
	}
	for input, want := range cases {
		if got := FormInt(input); got != want {
			t.Errorf("FormInt(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestFormBool(t *testing.T) {
	if !FormBool("true") || !FormBool("1") {
		t.Error("expected true and 1 to parse as true")
	}
	if FormBool("false") || FormBool("") || FormBool("yes") {
		t.Error("expected anything else to parse as false")
	}
}

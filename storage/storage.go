package storage

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Client abstracts image storage for dependency injection and testing.
// Save methods return the stable relative URL that gets recorded
// verbatim on the owning record.
type Client interface {
	SaveProductImage(file multipart.File, originalName string) (string, error)
	SaveCategoryImage(file multipart.File, originalName string) (string, error)
	SaveCompanyImage(file multipart.File, originalName string) (string, error)
	DeleteFile(fileURL string) error
}

// DiskClient stores uploads on the local filesystem under baseDir and
// serves them as static assets under /uploads.
type DiskClient struct {
	baseDir string
}

func NewDiskClient(baseDir string) *DiskClient {
	if baseDir == "" {
		baseDir = "uploads"
	}
	return &DiskClient{baseDir: baseDir}
}

func (d *DiskClient) SaveProductImage(file multipart.File, originalName string) (string, error) {
	return d.save(file, originalName, "products", "product")
}

func (d *DiskClient) SaveCategoryImage(file multipart.File, originalName string) (string, error) {
	return d.save(file, originalName, "categories", "category")
}

func (d *DiskClient) SaveCompanyImage(file multipart.File, originalName string) (string, error) {
	return d.save(file, originalName, "company", "company")
}

func (d *DiskClient) save(file multipart.File, originalName, subdir, prefix string) (string, error) {
	dir := filepath.Join(d.baseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := strings.ToLower(path.Ext(originalName))
	filename := fmt.Sprintf("%s-%d-%d%s", prefix, time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return "/uploads/" + subdir + "/" + filename, nil
}

// DeleteFile removes the file behind a previously returned URL.
// Deleting a file that no longer exists is not an error.
func (d *DiskClient) DeleteFile(fileURL string) error {
	rel, ok := strings.CutPrefix(fileURL, "/uploads/")
	if !ok {
		return fmt.Errorf("invalid upload URL: %s", fileURL)
	}
	// Uploaded filenames are generated, but never follow a URL outside
	// the upload directory.
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid upload URL: %s", fileURL)
	}

	err := os.Remove(filepath.Join(d.baseDir, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

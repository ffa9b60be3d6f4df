package handlers

import (
	"fmt"
	"mime/multipart"
)

// mockStorage is a recording in-memory storage.Client. Save calls
// return unique URLs; SavedFiles tracks which ones are still "on disk"
// after DeleteFile calls.
type mockStorage struct {
	SaveProductImageFn  func(file multipart.File, originalName string) (string, error)
	SaveCategoryImageFn func(file multipart.File, originalName string) (string, error)
	SaveCompanyImageFn  func(file multipart.File, originalName string) (string, error)
	DeleteFileFn        func(fileURL string) error

	SavedFiles      []string
	DeleteFileCalls []string
	SaveCallCount   int
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		SavedFiles:      []string{},
		DeleteFileCalls: []string{},
	}
}

func (m *mockStorage) save(subdir string, fn func(file multipart.File, originalName string) (string, error), file multipart.File, originalName string) (string, error) {
	m.SaveCallCount++
	if fn != nil {
		return fn(file, originalName)
	}
	url := fmt.Sprintf("/uploads/%s/test-%d.jpg", subdir, m.SaveCallCount)
	m.SavedFiles = append(m.SavedFiles, url)
	return url, nil
}

func (m *mockStorage) SaveProductImage(file multipart.File, originalName string) (string, error) {
	return m.save("products", m.SaveProductImageFn, file, originalName)
}

func (m *mockStorage) SaveCategoryImage(file multipart.File, originalName string) (string, error) {
	return m.save("categories", m.SaveCategoryImageFn, file, originalName)
}

func (m *mockStorage) SaveCompanyImage(file multipart.File, originalName string) (string, error) {
	return m.save("company", m.SaveCompanyImageFn, file, originalName)
}

func (m *mockStorage) DeleteFile(fileURL string) error {
	m.DeleteFileCalls = append(m.DeleteFileCalls, fileURL)
	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(fileURL)
	}
	for i, url := range m.SavedFiles {
		if url == fileURL {
			m.SavedFiles = append(m.SavedFiles[:i], m.SavedFiles[i+1:]...)
			break
		}
	}
	return nil
}

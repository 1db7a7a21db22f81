package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ExportResult records the outcome for one selected URL.
type ExportResult struct {
	URL   string `json:"url"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
}

// ExportService downloads previously hosted media back to local files,
// one at a time, forcing the host's attachment disposition.
type ExportService struct {
	dir    string
	client *http.Client
}

// NewExportService creates a new export service instance
func NewExportService() *ExportService {
	dir := os.Getenv("EXPORT_DIR")
	if dir == "" {
		dir = filepath.Join("uploads", "exports")
	}
	return &ExportService{
		dir:    dir,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// ExportSelected fetches every URL in selection order and saves each as
// memory_<position>. A failed item is logged and skipped; the remaining
// downloads still run.
func (s *ExportService) ExportSelected(ctx context.Context, urls []string) []ExportResult {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		log.Printf("Export: failed to create export directory %s: %v", s.dir, err)
	}

	results := make([]ExportResult, 0, len(urls))
	for i, url := range urls {
		filename := fmt.Sprintf("memory_%d", i+1)
		path, err := s.download(ctx, url, filename)
		if err != nil {
			log.Printf("Export: download failed for %s: %v", url, err)
			results = append(results, ExportResult{URL: url, Error: err.Error()})
			continue
		}
		results = append(results, ExportResult{URL: url, File: path})
	}
	return results
}

func (s *ExportService) download(ctx context.Context, url, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ToAttachmentURL(url), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download (%d)", res.StatusCode)
	}

	path := filepath.Join(s.dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, res.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

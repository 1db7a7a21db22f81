package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultUploadFolder = "memories"

// MediaHostService handles interactions with the remote media host
// (Cloudinary-compatible unsigned upload API).
type MediaHostService struct {
	baseURL      string
	cloudName    string
	uploadPreset string
	folder       string
	client       *http.Client
}

// UploadResult carries the three response fields the pipeline needs.
type UploadResult struct {
	SecureURL    string `json:"secure_url"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
}

// NewMediaHostService creates a new media host service instance
func NewMediaHostService() *MediaHostService {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	folder := os.Getenv("CLOUDINARY_FOLDER")
	if folder == "" {
		folder = defaultUploadFolder
	}

	if cloudName == "" || uploadPreset == "" {
		log.Printf("WARNING: media host credentials not fully configured:")
		if cloudName == "" {
			log.Printf("  - CLOUDINARY_CLOUD_NAME is missing")
		}
		if uploadPreset == "" {
			log.Printf("  - CLOUDINARY_UPLOAD_PRESET is missing")
		}
		log.Printf("Please set these environment variables for uploads to work")
	}

	return &MediaHostService{
		baseURL:      "https://api.cloudinary.com/v1_1",
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		folder:       folder,
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *MediaHostService) endpoint() string {
	return fmt.Sprintf("%s/%s/auto/upload", s.baseURL, s.cloudName)
}

// Upload transmits one file to the media host and returns the remote URL,
// content identifier and coarse resource category. Missing credentials
// fail fast, before any network call.
func (s *MediaHostService) Upload(ctx context.Context, filename, mimeType string, data []byte) (*UploadResult, error) {
	var missing []string
	if s.cloudName == "" {
		missing = append(missing, "CLOUDINARY_CLOUD_NAME")
	}
	if s.uploadPreset == "" {
		missing = append(missing, "CLOUDINARY_UPLOAD_PRESET")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	// Build the multipart form body
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	writer.WriteField("upload_preset", s.uploadPreset)
	writer.WriteField("folder", s.folder)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := s.client.Do(req)
	if err != nil {
		return nil, &UploadError{Filename: filename, Message: err.Error()}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &UploadError{Filename: filename, Status: res.StatusCode, Message: err.Error()}
	}

	// Parse the body as JSON when possible, keep the raw text when not
	var parsed struct {
		UploadResult
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	jsonErr := json.Unmarshal(raw, &parsed)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		message := "media host upload failed"
		if jsonErr == nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		log.Printf("Media host error (%d): %s", res.StatusCode, strings.TrimSpace(string(raw)))
		return nil, &UploadError{Filename: filename, Status: res.StatusCode, Message: message}
	}

	if jsonErr != nil {
		return nil, &UploadError{
			Filename: filename,
			Status:   res.StatusCode,
			Message:  "unexpected media host response: " + strings.TrimSpace(string(raw)),
		}
	}

	result := parsed.UploadResult
	return &result, nil
}

// ToAttachmentURL rewrites a delivery URL into its attachment-forcing
// variant so browsers download the file instead of rendering it inline.
func ToAttachmentURL(url string) string {
	if !strings.Contains(url, "/upload/") {
		return url
	}
	return strings.Replace(url, "/upload/", "/upload/fl_attachment/", 1)
}

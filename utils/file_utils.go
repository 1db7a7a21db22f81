package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	// Base directory for storing local files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum accepted size for a single selected file (100MB)
	MaxFileSize = 100 * 1024 * 1024

	// Images are re-encoded before upload so they fit these budgets
	maxImageBytes = 512 * 1024
	maxImageEdge  = 1080
	// Hard floor for the byte-budget shrink loop; below this the result
	// is returned as is
	minImageEdge = 320
)

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	// Remove any path components
	filename = filepath.Base(filename)
	// Remove any non-alphanumeric characters except for dots and hyphens
	reg := regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	return reg.ReplaceAllString(filename, "")
}

// AllowedMediaType reports whether a declared MIME type may enter a batch.
// The composer accepts photos, videos and PDFs.
func AllowedMediaType(mimeType string) bool {
	if strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "video/") {
		return true
	}
	return mimeType == "application/pdf"
}

// IsImageMime reports whether the declared type is an image type.
func IsImageMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// IsVideoMime reports whether the declared type is a video type.
func IsVideoMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "video/")
}

// InitializeStorage creates necessary directories for local file storage
func InitializeStorage() error {
	// Create main uploads directory
	if err := os.MkdirAll(uploadBaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %v", err)
	}

	// Create subdirectories
	dirs := []string{
		filepath.Join(uploadBaseDir, "previews"),
		filepath.Join(uploadBaseDir, "thumbnails"),
		filepath.Join(uploadBaseDir, "exports"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// CompressImage re-encodes an image so it fits the upload byte budget and
// the maximum edge dimension, preserving aspect ratio. When lowering the
// JPEG quality alone cannot reach the byte budget the image is shrunk
// further, down to the minImageEdge floor. Non-image data should never
// reach this function.
func CompressImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}

	edge := maxImageEdge
	bounds := img.Bounds()
	if bounds.Dx() > edge || bounds.Dy() > edge {
		img = imaging.Fit(img, edge, edge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	for {
		// Walk the JPEG quality down until the result fits the byte budget
		fits := false
		for quality := 85; quality >= 40; quality -= 10 {
			buf.Reset()
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
				return nil, fmt.Errorf("failed to encode image: %v", err)
			}
			if buf.Len() <= maxImageBytes {
				fits = true
				break
			}
		}
		if fits || edge <= minImageEdge {
			break
		}

		edge = edge * 3 / 4
		if edge < minImageEdge {
			edge = minImageEdge
		}
		img = imaging.Fit(img, edge, edge, imaging.Lanczos)
	}

	return buf.Bytes(), nil
}

// SavePreview writes one selected file under the previews directory and
// returns the URL it is served at. The file stays on disk until
// ReleasePreview is called.
func SavePreview(data []byte, originalName string) (string, error) {
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("file too large. Maximum size is %d bytes", MaxFileSize)
	}

	if err := InitializeStorage(); err != nil {
		return "", err
	}

	filename := uuid.New().String() + strings.ToLower(filepath.Ext(cleanFilename(originalName)))
	fullPath := filepath.Join(uploadBaseDir, "previews", filename)

	// Write the file with restricted permissions
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %v", fullPath, err)
	}

	return fmt.Sprintf("%s/previews/%s", baseURL, filename), nil
}

// ReleasePreview removes the on-disk file behind a preview URL. Callers
// must release each preview exactly once.
func ReleasePreview(url string) error {
	rel := strings.TrimPrefix(url, baseURL+"/")
	if rel == url || rel == "" {
		return fmt.Errorf("not a local preview URL: %s", url)
	}

	// Guard against traversal out of the uploads directory
	cleanPath := filepath.Clean(rel)
	if cleanPath == ".." || strings.HasPrefix(cleanPath, "../") {
		return fmt.Errorf("invalid preview path: %s", url)
	}

	fullPath := filepath.Join(uploadBaseDir, cleanPath)
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to remove preview %s: %v", fullPath, err)
	}
	return nil
}

// GenerateVideoThumbnail generates a thumbnail for a locally stored video
// preview and returns the URL it is served at
func GenerateVideoThumbnail(previewURL string) (string, error) {
	// Ensure the uploads directory exists
	if err := InitializeStorage(); err != nil {
		return "", err
	}

	// Extract video path from URL
	videoPath := strings.TrimPrefix(previewURL, baseURL+"/")
	fullVideoPath := filepath.Join(uploadBaseDir, videoPath)

	// Create a temporary file for the raw frame
	framePath := filepath.Join(os.TempDir(), uuid.New().String()+".jpg")

	// Grab a single frame one second in using ffmpeg
	err := ffmpeg.Input(fullVideoPath).
		Output(framePath, ffmpeg.KwArgs{"vframes": 1, "ss": "00:00:01"}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to generate thumbnail: %v", err)
	}
	defer os.Remove(framePath)

	frameData, err := os.ReadFile(framePath)
	if err != nil {
		return "", fmt.Errorf("failed to read thumbnail file: %v", err)
	}

	img, err := imaging.Decode(bytes.NewReader(frameData))
	if err != nil {
		return "", fmt.Errorf("failed to decode thumbnail: %v", err)
	}

	// Resize to max width of 320px while maintaining aspect ratio
	resized := imaging.Resize(img, 320, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %v", err)
	}

	filename := uuid.New().String() + ".jpg"
	thumbPath := filepath.Join(uploadBaseDir, "thumbnails", filename)
	if err := os.WriteFile(thumbPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write thumbnail: %v", err)
	}

	return fmt.Sprintf("%s/thumbnails/%s", baseURL, filename), nil
}

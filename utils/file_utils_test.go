package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

// chdirTemp runs the test from a temporary directory so the uploads tree
// does not leak into the working copy.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}

// noisyPNG produces an image that does not compress to nothing.
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestAllowedMediaType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"image/jpeg", true},
		{"image/png", true},
		{"video/mp4", true},
		{"application/pdf", true},
		{"text/html", false},
		{"application/octet-stream", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := AllowedMediaType(tt.mimeType); got != tt.want {
			t.Errorf("AllowedMediaType(%q) = %v, want %v", tt.mimeType, got, tt.want)
		}
	}
}

func TestCompressImageFitsBudgets(t *testing.T) {
	data := noisyPNG(t, 2400, 1600)

	out, err := CompressImage(data)
	if err != nil {
		t.Fatalf("CompressImage: %v", err)
	}

	if len(out) > maxImageBytes {
		t.Errorf("compressed size %d exceeds budget %d", len(out), maxImageBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode compressed output: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxImageEdge || bounds.Dy() > maxImageEdge {
		t.Errorf("compressed dimensions %dx%d exceed max edge %d", bounds.Dx(), bounds.Dy(), maxImageEdge)
	}

	// Aspect ratio preserved (2400:1600 = 3:2)
	if bounds.Dy() == 0 || bounds.Dx()*2 != bounds.Dy()*3 {
		t.Errorf("aspect ratio not preserved: %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestCompressImageSmallStaysSmall(t *testing.T) {
	data := noisyPNG(t, 200, 100)

	out, err := CompressImage(data)
	if err != nil {
		t.Fatalf("CompressImage: %v", err)
	}
	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode compressed output: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("small image was resized to %v", img.Bounds())
	}
}

func TestCompressImageRejectsGarbage(t *testing.T) {
	if _, err := CompressImage([]byte("not an image at all")); err == nil {
		t.Fatal("expected an error for undecodable data")
	}
}

func TestPreviewLifecycle(t *testing.T) {
	chdirTemp(t)

	url, err := SavePreview([]byte("hello"), "photo one.jpg")
	if err != nil {
		t.Fatalf("SavePreview: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/previews/") {
		t.Fatalf("unexpected preview URL %q", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Errorf("preview URL lost the extension: %q", url)
	}

	onDisk := filepath.Join("uploads", strings.TrimPrefix(url, "/uploads/"))
	if _, err := os.Stat(onDisk); err != nil {
		t.Fatalf("preview file missing after save: %v", err)
	}

	if err := ReleasePreview(url); err != nil {
		t.Fatalf("ReleasePreview: %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Fatal("preview file still on disk after release")
	}

	// A second release of the same preview must fail, not silently pass
	if err := ReleasePreview(url); err == nil {
		t.Fatal("expected an error releasing an already-released preview")
	}
}

func TestReleasePreviewRejectsTraversal(t *testing.T) {
	chdirTemp(t)

	if err := ReleasePreview("/uploads/../main.go"); err == nil {
		t.Fatal("expected an error for a traversal path")
	}
	if err := ReleasePreview("https://res.example.com/upload/x.jpg"); err == nil {
		t.Fatal("expected an error for a non-local URL")
	}
}

func TestCompressImageByteBudgetIsHard(t *testing.T) {
	// Random noise barely compresses; the encoder must keep shrinking
	// dimensions until the result fits the byte budget
	data := noisyPNG(t, 2000, 2000)

	out, err := CompressImage(data)
	if err != nil {
		t.Fatalf("CompressImage: %v", err)
	}
	if len(out) > maxImageBytes {
		t.Errorf("compressed size %d exceeds budget %d", len(out), maxImageBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode compressed output: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() < minImageEdge || bounds.Dy() < minImageEdge {
		t.Errorf("image shrunk below the %dpx floor: %dx%d", minImageEdge, bounds.Dx(), bounds.Dy())
	}
}

package models

import "testing"

func TestKindFrom(t *testing.T) {
	tests := []struct {
		name         string
		mimeType     string
		resourceType string
		want         string
	}{
		{"pdf wins over any category", "application/pdf", "raw", KindPDF},
		{"pdf wins even when host says image", "application/pdf", "image", KindPDF},
		{"video from host category", "video/mp4", "video", KindVideo},
		{"quicktime video", "video/quicktime", "video", KindVideo},
		{"plain jpeg", "image/jpeg", "image", KindImage},
		{"png", "image/png", "image", KindImage},
		{"unknown mime defaults to image", "", "image", KindImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindFrom(tt.mimeType, tt.resourceType); got != tt.want {
				t.Errorf("KindFrom(%q, %q) = %q, want %q", tt.mimeType, tt.resourceType, got, tt.want)
			}
		})
	}
}

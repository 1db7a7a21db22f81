package utils

import "testing"

func TestBatchProgress(t *testing.T) {
	tests := []struct {
		name  string
		done  int
		total int
		want  int
	}{
		{"start of batch", 0, 3, 0},
		{"one of three", 1, 3, 33},
		{"two of three", 2, 3, 67},
		{"all of three", 3, 3, 100},
		{"single file done", 1, 1, 100},
		{"empty batch", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BatchProgress(tt.done, tt.total); got != tt.want {
				t.Errorf("BatchProgress(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
			}
		})
	}
}

func TestBatchProgressMonotonic(t *testing.T) {
	for total := 1; total <= 10; total++ {
		prev := -1
		for i := 0; i < total; i++ {
			before := BatchProgress(i, total)
			after := BatchProgress(i+1, total)
			if before < prev {
				t.Fatalf("progress regressed at %d/%d: %d < %d", i, total, before, prev)
			}
			if after < before {
				t.Fatalf("progress regressed within file %d/%d: %d < %d", i, total, after, before)
			}
			if before < 0 || after > 100 {
				t.Fatalf("progress out of range at %d/%d: %d..%d", i, total, before, after)
			}
			prev = after
		}
		if prev != 100 {
			t.Fatalf("batch of %d did not end at 100, got %d", total, prev)
		}
		if total > 1 && BatchProgress(total-1, total) == 100 {
			t.Fatalf("batch of %d reached 100 before the last file", total)
		}
	}
}

package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "short text stays whole",
			text:       "hello world",
			chunkSize:  100,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "exact boundary",
			text:       strings.Repeat("a", 100),
			chunkSize:  100,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "splits with overlap",
			text:       strings.Repeat("a", 250),
			chunkSize:  100,
			overlap:    20,
			wantChunks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Errorf("chunk count = %d, want %d", len(chunks), tt.wantChunks)
			}
			for i, chunk := range chunks {
				if len(chunk) > tt.chunkSize {
					t.Errorf("chunk %d length %d exceeds size %d", i, len(chunk), tt.chunkSize)
				}
			}
		})
	}
}

func TestSplitTextOverlapPreservesContext(t *testing.T) {
	text := strings.Repeat("a", 150) + strings.Repeat("b", 150)
	chunks := SplitText(text, 200, 50)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	// The tail of chunk 0 must reappear at the head of chunk 1.
	tail := chunks[0][len(chunks[0])-50:]
	if !strings.HasPrefix(chunks[1], tail) {
		t.Error("overlap region missing from second chunk")
	}
}

func TestSplitTextDegenerateOverlap(t *testing.T) {
	// overlap >= chunkSize must not loop forever
	chunks := SplitText(strings.Repeat("a", 300), 100, 100)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
}

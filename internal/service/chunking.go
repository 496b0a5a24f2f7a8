package service

import "strings"

// ChunkConfig controls how document text is split before indexing.
type ChunkConfig struct {
	// Size is the chunk window in runes.
	Size int
}

// DefaultChunkConfig splits documents into fixed 1000-rune windows with
// no overlap. Each chunk is indexed verbatim, so windows stay small
// enough for a single embedding call.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{Size: 1000}
}

// chunkText splits text into fixed-size windows. Rune-based slicing keeps
// multi-byte characters intact. Empty or whitespace-only input yields no
// chunks.
func chunkText(text string, cfg ChunkConfig) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	size := cfg.Size
	if size <= 0 {
		size = DefaultChunkConfig().Size
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

package service

import (
	"fmt"
	"strings"

	"github.com/docchat-io/docchat-be/types"
)

const (
	DefaultChunkWords   = 800
	DefaultOverlapWords = 80
)

// Chunker splits extracted text into overlapping, word-bounded chunks.
// Splitting is a pure function of (text, chunkWords, overlapWords): no I/O,
// deterministic, so re-chunking a document always yields the same pieces.
type Chunker struct {
	chunkWords   int
	overlapWords int
}

func NewChunker(cfg types.ChunkerConfig) (*Chunker, error) {
	if cfg.ChunkWords <= 0 {
		return nil, fmt.Errorf("chunk words must be positive, got %d", cfg.ChunkWords)
	}
	if cfg.OverlapWords < 0 {
		return nil, fmt.Errorf("overlap words must not be negative, got %d", cfg.OverlapWords)
	}
	if cfg.OverlapWords >= cfg.ChunkWords {
		return nil, fmt.Errorf("overlap words (%d) must be smaller than chunk words (%d)", cfg.OverlapWords, cfg.ChunkWords)
	}
	return &Chunker{
		chunkWords:   cfg.ChunkWords,
		overlapWords: cfg.OverlapWords,
	}, nil
}

// Split tokenizes text on whitespace and emits windows of chunkWords words,
// each window starting overlapWords before the previous one ended. The loop
// stops as soon as a window reaches the final word, so there is never an
// empty or duplicate trailing chunk. Empty text yields no chunks; text of at
// most chunkWords words yields exactly one.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	n := len(words)
	if n == 0 {
		return nil
	}

	step := c.chunkWords - c.overlapWords
	chunks := make([]string, 0, (n+step-1)/step)
	for offset := 0; ; offset += step {
		end := offset + c.chunkWords
		if end > n {
			end = n
		}
		chunks = append(chunks, strings.Join(words[offset:end], " "))
		if end >= n {
			break
		}
	}
	return chunks
}

package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-io/docchat-be/types"
)

func TestNewChunker(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		c, err := NewChunker(types.ChunkerConfig{ChunkWords: 800, OverlapWords: 80})
		require.NoError(t, err)
		require.NotNil(t, c)
	})

	t.Run("zero chunk words", func(t *testing.T) {
		_, err := NewChunker(types.ChunkerConfig{ChunkWords: 0, OverlapWords: 0})
		assert.Error(t, err)
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := NewChunker(types.ChunkerConfig{ChunkWords: 10, OverlapWords: -1})
		assert.Error(t, err)
	})

	t.Run("overlap equal to chunk words", func(t *testing.T) {
		_, err := NewChunker(types.ChunkerConfig{ChunkWords: 10, OverlapWords: 10})
		assert.Error(t, err)
	})
}

func TestChunker_Split(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		c, err := NewChunker(types.ChunkerConfig{ChunkWords: 4, OverlapWords: 1})
		require.NoError(t, err)
		assert.Empty(t, c.Split(""))
		assert.Empty(t, c.Split("   \n\t  "))
	})

	t.Run("text shorter than chunk size", func(t *testing.T) {
		c, err := NewChunker(types.ChunkerConfig{ChunkWords: 10, OverlapWords: 2})
		require.NoError(t, err)
		chunks := c.Split("just a few words")
		require.Len(t, chunks, 1)
		assert.Equal(t, "just a few words", chunks[0])
	})

	t.Run("overlapping windows", func(t *testing.T) {
		c, err := NewChunker(types.ChunkerConfig{ChunkWords: 4, OverlapWords: 1})
		require.NoError(t, err)
		chunks := c.Split("A B C D E F")
		assert.Equal(t, []string{"A B C D", "D E F"}, chunks)
	})

	t.Run("no trailing empty chunk on exact fit", func(t *testing.T) {
		c, err := NewChunker(types.ChunkerConfig{ChunkWords: 3, OverlapWords: 0})
		require.NoError(t, err)
		chunks := c.Split("a b c d e f")
		assert.Equal(t, []string{"a b c", "d e f"}, chunks)
	})

	t.Run("whitespace runs collapse to single spaces", func(t *testing.T) {
		c, err := NewChunker(types.ChunkerConfig{ChunkWords: 10, OverlapWords: 0})
		require.NoError(t, err)
		chunks := c.Split("one\n\ntwo\t three   four")
		require.Len(t, chunks, 1)
		assert.Equal(t, "one two three four", chunks[0])
	})

	t.Run("consecutive chunks share overlap words", func(t *testing.T) {
		const chunkWords, overlapWords = 5, 2
		c, err := NewChunker(types.ChunkerConfig{ChunkWords: chunkWords, OverlapWords: overlapWords})
		require.NoError(t, err)

		words := make([]string, 23)
		for i := range words {
			words[i] = fmt.Sprintf("w%d", i)
		}
		chunks := c.Split(strings.Join(words, " "))
		require.Greater(t, len(chunks), 1)

		for i := 1; i < len(chunks); i++ {
			prev := strings.Fields(chunks[i-1])
			cur := strings.Fields(chunks[i])
			require.Len(t, prev, chunkWords)
			assert.Equal(t, prev[len(prev)-overlapWords:], cur[:min(overlapWords, len(cur))])
		}

		// Concatenating chunks minus their overlaps reproduces the input.
		rebuilt := strings.Fields(chunks[0])
		for i := 1; i < len(chunks); i++ {
			cur := strings.Fields(chunks[i])
			rebuilt = append(rebuilt, cur[min(overlapWords, len(cur)):]...)
		}
		assert.Equal(t, words, rebuilt)
	})

	t.Run("deterministic", func(t *testing.T) {
		c, err := NewChunker(types.ChunkerConfig{ChunkWords: 7, OverlapWords: 3})
		require.NoError(t, err)
		text := strings.Repeat("alpha beta gamma delta ", 40)
		assert.Equal(t, c.Split(text), c.Split(text))
	})
}

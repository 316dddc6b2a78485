package rag

import (
	"finreport-backend/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunkerRejectsInvalidParams(t *testing.T) {
	cases := []struct {
		name    string
		window  int
		overlap int
	}{
		{"zero window", 0, 0},
		{"negative window", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals window", 10, 10},
		{"overlap exceeds window", 10, 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewChunker(tc.window, tc.overlap)
			require.ErrorIs(t, err, model.ErrInvalidConfiguration)
		})
	}
}

func TestChunkerShortTextYieldsSingleChunk(t *testing.T) {
	chunker, err := NewChunker(50, 10)
	require.NoError(t, err)

	text := "Revenue was $1,000,000 in Q1."
	chunks := chunker.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len([]rune(text)), chunks[0].End)
}

func TestChunkerEmptyTextYieldsNothing(t *testing.T) {
	chunker, err := NewChunker(50, 10)
	require.NoError(t, err)

	assert.Empty(t, chunker.Split(""))
}

func TestChunkerReconstructsOriginalText(t *testing.T) {
	texts := []string{
		strings.Repeat("abcdefghij", 10),
		"Net income rose 12% year over year, driven by margin expansion.",
		"营业收入同比增长百分之十二，主要由毛利率改善驱动。" + strings.Repeat("x", 37),
	}

	cases := []struct {
		window  int
		overlap int
	}{
		{10, 0},
		{10, 3},
		{7, 6},
		{100, 20},
	}

	for _, tc := range cases {
		chunker, err := NewChunker(tc.window, tc.overlap)
		require.NoError(t, err)

		for _, text := range texts {
			runes := []rune(text)
			chunks := chunker.Split(text)
			require.NotEmpty(t, chunks)

			// 偏移量指向原文的字符区间
			for _, chunk := range chunks {
				assert.Equal(t, string(runes[chunk.Start:chunk.End]), chunk.Text)
			}

			assert.Equal(t, 0, chunks[0].Start)
			assert.Equal(t, len(runes), chunks[len(chunks)-1].End)

			// 去掉重叠区后拼接还原原文
			var sb strings.Builder
			sb.WriteString(chunks[0].Text)
			for _, chunk := range chunks[1:] {
				sb.WriteString(string([]rune(chunk.Text)[tc.overlap:]))
			}
			assert.Equal(t, text, sb.String(),
				"window=%d overlap=%d", tc.window, tc.overlap)
		}
	}
}

func TestChunkerSequenceIsRepeatable(t *testing.T) {
	chunker, err := NewChunker(10, 3)
	require.NoError(t, err)

	seq := chunker.Chunks(strings.Repeat("0123456789", 5))

	var first, second []Chunk
	for c := range seq {
		first = append(first, c)
	}
	for c := range seq {
		second = append(second, c)
	}

	assert.Equal(t, first, second)
}

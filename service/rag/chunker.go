package rag

import (
	"finreport-backend/model"
	"fmt"
	"iter"
)

// Chunk 切分产物，偏移量为全文内的字符（rune）区间 [Start, End)
type Chunk struct {
	Index int
	Text  string
	Start int
	End   int
}

// Chunker 固定窗口重叠切分器，无副作用
// 相邻chunk共享overlap长度的首尾区域，拼接去除重叠后可完整还原原文
type Chunker struct {
	window  int
	overlap int
}

func NewChunker(window, overlap int) (*Chunker, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: chunk window must be positive, got %d", model.ErrInvalidConfiguration, window)
	}
	if overlap < 0 || overlap >= window {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, window=%d)", model.ErrInvalidConfiguration, overlap, window)
	}
	return &Chunker{window: window, overlap: overlap}, nil
}

// Chunks 惰性产出覆盖全文的chunk序列，可重复迭代
// 文本短于窗口时恰好产出一个chunk，空文本不产出
func (c *Chunker) Chunks(text string) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		runes := []rune(text)
		if len(runes) == 0 {
			return
		}

		step := c.window - c.overlap
		index := 0
		for start := 0; ; start += step {
			end := start + c.window
			if end > len(runes) {
				end = len(runes)
			}

			if !yield(Chunk{
				Index: index,
				Text:  string(runes[start:end]),
				Start: start,
				End:   end,
			}) {
				return
			}

			if end == len(runes) {
				return
			}
			index++
		}
	}
}

// Split Chunks的切片形式
func (c *Chunker) Split(text string) []Chunk {
	var chunks []Chunk
	for chunk := range c.Chunks(text) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

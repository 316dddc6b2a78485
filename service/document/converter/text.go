package converter

import (
	"context"
	"finreport-backend/model"
	"strings"
	"unicode/utf8"
)

// TextConverter 纯文本类文件解析器，兼容 txt/md/csv/json
type TextConverter struct{}

var _ Converter = &TextConverter{}

func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

func (c *TextConverter) CanConvert(fileType model.FileType) bool {
	switch fileType {
	case model.FileTypeText, model.FileTypeMarkdown, model.FileTypeCSV, model.FileTypeJSON:
		return true
	}
	return false
}

// Convert 纯文本没有页结构，整体视为第一页
func (c *TextConverter) Convert(_ context.Context, data []byte, _ string) (*Result, error) {
	text := strings.ToValidUTF8(string(data), "")

	return &Result{
		Text: text,
		Pages: []PageBoundary{
			{Label: "page_1", Start: 0, End: utf8.RuneCountInString(text)},
		},
	}, nil
}

package converter

import (
	"context"
	"finreport-backend/model"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertDispatchesByFileType(t *testing.T) {
	result, err := Convert(context.Background(), []byte("# Q1 Report\n\nRevenue grew."), model.FileTypeMarkdown, "")
	require.NoError(t, err)
	assert.Equal(t, "# Q1 Report\n\nRevenue grew.", result.Text)
}

func TestConvertRejectsUnsupportedType(t *testing.T) {
	_, err := Convert(context.Background(), []byte("data"), model.FileType("docx"), "")
	require.ErrorIs(t, err, model.ErrUnsupportedFileType)
}

func TestTextConverterHandlesPlainFormats(t *testing.T) {
	c := NewTextConverter()

	for _, fileType := range []model.FileType{
		model.FileTypeText,
		model.FileTypeMarkdown,
		model.FileTypeCSV,
		model.FileTypeJSON,
	} {
		assert.True(t, c.CanConvert(fileType), "file type: %s", fileType)
	}
	assert.False(t, c.CanConvert(model.FileTypePDF))
}

func TestTextConverterSinglePage(t *testing.T) {
	c := NewTextConverter()

	text := "营业收入同比增长 12%。"
	result, err := c.Convert(context.Background(), []byte(text), "")
	require.NoError(t, err)

	assert.Equal(t, text, result.Text)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "page_1", result.Pages[0].Label)
	assert.Equal(t, 0, result.Pages[0].Start)
	assert.Equal(t, utf8.RuneCountInString(text), result.Pages[0].End)
}

func TestTextConverterDropsInvalidUTF8(t *testing.T) {
	c := NewTextConverter()

	result, err := c.Convert(context.Background(), []byte{'o', 'k', 0xff, 0xfe, '!'}, "")
	require.NoError(t, err)
	assert.Equal(t, "ok!", result.Text)
	assert.True(t, utf8.ValidString(result.Text))
}

func TestPageLabel(t *testing.T) {
	pages := []PageBoundary{
		{Label: "page_1", Start: 0, End: 10},
		{Label: "page_2", Start: 10, End: 20},
	}

	assert.Equal(t, "page_1", PageLabel(pages, 0))
	assert.Equal(t, "page_1", PageLabel(pages, 9))
	assert.Equal(t, "page_2", PageLabel(pages, 10))

	// 无页信息或越界时回退到unknown
	assert.Equal(t, model.PageLabelUnknown, PageLabel(pages, 25))
	assert.Equal(t, model.PageLabelUnknown, PageLabel(nil, 0))
}

func TestPDFConverterRejectsGarbage(t *testing.T) {
	c := NewPDFConverter()
	require.True(t, c.CanConvert(model.FileTypePDF))

	_, err := c.Convert(context.Background(), []byte("not a pdf"), "")
	require.Error(t, err)
}

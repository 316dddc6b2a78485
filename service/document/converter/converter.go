package converter

import (
	"context"
	"finreport-backend/model"
	"fmt"
)

// PageBoundary 页在全文中的字符区间 [Start, End)
type PageBoundary struct {
	Label string
	Start int
	End   int
}

// Result 文档解析结果
type Result struct {
	Text  string
	Pages []PageBoundary
}

// Converter 文档解析器，按文件类型分发
type Converter interface {
	// 判断是否支持传入的文件类型
	CanConvert(fileType model.FileType) bool

	// 解析文件内容，返回全文和页边界
	Convert(ctx context.Context, data []byte, password string) (*Result, error)
}

// 文档解析器注册表
var registry = []Converter{
	NewPDFConverter(),
	NewTextConverter(),
}

// Convert 查找匹配文件类型的解析器并执行解析
func Convert(ctx context.Context, data []byte, fileType model.FileType, password string) (*Result, error) {
	for _, c := range registry {
		if c.CanConvert(fileType) {
			return c.Convert(ctx, data, password)
		}
	}
	return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedFileType, fileType)
}

// PageLabel 返回偏移量所在页的标签，chunk跨页时取起始位置所在页
// 无页信息时返回 unknown
func PageLabel(pages []PageBoundary, offset int) string {
	for _, page := range pages {
		if offset >= page.Start && offset < page.End {
			return page.Label
		}
	}
	return model.PageLabelUnknown
}

package converter

import (
	"bytes"
	"context"
	"finreport-backend/model"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/tmc/langchaingo/documentloaders"
)

const pageSeparator = "\n\n"

// PDFConverter PDF文件解析器
// pdfcpu负责加密检测与解密，密码缺失或错误返回ErrEncryptedDocument
type PDFConverter struct{}

var _ Converter = &PDFConverter{}

func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

func (c *PDFConverter) CanConvert(fileType model.FileType) bool {
	return fileType == model.FileTypePDF
}

func (c *PDFConverter) Convert(ctx context.Context, data []byte, password string) (*Result, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		if isEncryptionError(err) {
			return nil, fmt.Errorf("%w: %v", model.ErrEncryptedDocument, err)
		}
		return nil, fmt.Errorf("invalid pdf: %v", err)
	}

	// 文本抽取器无法读取加密内容，先解密到内存
	if password != "" {
		var buf bytes.Buffer
		if err := api.Decrypt(bytes.NewReader(data), &buf, conf); err == nil {
			data = buf.Bytes()
		}
	}

	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract pdf text: %v", err)
	}

	result := &Result{}
	var sb strings.Builder
	offset := 0
	for i, doc := range docs {
		text := strings.ToValidUTF8(doc.PageContent, "")
		if strings.TrimSpace(text) == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString(pageSeparator)
			offset += utf8.RuneCountInString(pageSeparator)
		}

		length := utf8.RuneCountInString(text)
		result.Pages = append(result.Pages, PageBoundary{
			Label: fmt.Sprintf("page_%d", i+1),
			Start: offset,
			End:   offset + length,
		})

		sb.WriteString(text)
		offset += length
	}

	result.Text = sb.String()
	return result, nil
}

// 与原始报错文案匹配，pdfcpu未导出专门的错误类型
func isEncryptionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

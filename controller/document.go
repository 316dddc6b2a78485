package controller

import (
	"errors"
	"finreport-backend/dao"
	"finreport-backend/model"
	"finreport-backend/request"
	"finreport-backend/response"
	"finreport-backend/service/audit"
	"finreport-backend/service/document"
	"finreport-backend/service/rag"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UploadDocument 接收multipart上传，在请求内同步完成解析、切分和向量化
// 凭证只在本次请求内使用，不落库
func UploadDocument(c *gin.Context) {
	var req request.UploadDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		slog.Error(ErrGetUploadedFile.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrGetUploadedFile.Error(),
		})
		return
	}

	fileType, err := parseFileType(fileHeader.Filename)
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), response.Response{
			Msg: userMessage(err, ErrUploadDocument.Error()),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error(ErrGetUploadedFile.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetUploadedFile.Error(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error(ErrGetUploadedFile.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetUploadedFile.Error(),
		})
		return
	}

	email := c.GetString("email")
	creds := rag.Credentials{
		Provider:       req.Provider,
		APIKey:         req.APIKey,
		BaseURL:        req.BaseURL,
		EmbeddingModel: req.EmbeddingModel,
	}

	started := time.Now()
	doc, err := document.NewProcessor().Upload(c.Request.Context(), email, fileHeader.Filename, fileType, data, req.Password, creds)

	entry := audit.Entry{
		UserEmail: email,
		QueryText: fileHeader.Filename,
		QueryKind: model.QueryKindUpload,
		Provider:  creds.Resolved().Provider,
		Model:     creds.Resolved().EmbeddingModel,
		Started:   started,
		Success:   err == nil,
		Err:       err,
	}
	audit.Record(entry)

	if err != nil {
		slog.Error(ErrUploadDocument.Error(),
			"file_name", fileHeader.Filename,
			"err", err,
		)
		resp := response.Response{
			Msg: userMessage(err, ErrUploadDocument.Error()),
		}
		if doc != nil {
			resp.Data = toDocumentResponse(doc)
		}
		c.AbortWithStatusJSON(statusFor(err), resp)
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: toDocumentResponse(doc),
	})
}

func GetDocuments(c *gin.Context) {
	email := c.GetString("email")
	docs, err := dao.GetDocumentsByEmail(email)
	if err != nil {
		slog.Error(ErrGetDocuments.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetDocuments.Error(),
		})
		return
	}

	var resp response.GetDocumentsResponse
	for i := range docs {
		resp.Documents = append(resp.Documents, toDocumentResponse(&docs[i]))
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

// DeleteDocument 级联删除文档及其全部切片向量
func DeleteDocument(c *gin.Context) {
	email := c.GetString("email")
	documentID := c.Param("id")
	if err := dao.DeleteDocument(email, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
				Msg: ErrDocumentNotFound.Error(),
			})
			return
		}
		slog.Error(ErrDeleteDocument.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrDeleteDocument.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

// ReindexDocument 用新的模型服务重建一个文档的全部向量，替换过程原子生效
func ReindexDocument(c *gin.Context) {
	var req request.ReindexDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	email := c.GetString("email")
	documentID := c.Param("id")
	doc, err := dao.GetDocumentByID(documentID)
	if err != nil {
		slog.Error(ErrReindexDocument.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrReindexDocument.Error(),
		})
		return
	}
	if doc == nil || doc.UserEmail != email {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: ErrDocumentNotFound.Error(),
		})
		return
	}
	if doc.Status != model.StatusReady {
		c.AbortWithStatusJSON(http.StatusConflict, response.Response{
			Msg: "document is not ready for reindexing",
		})
		return
	}

	creds := rag.Credentials{
		Provider:       req.Provider.Provider,
		APIKey:         req.Provider.APIKey,
		BaseURL:        req.Provider.BaseURL,
		EmbeddingModel: req.Provider.EmbeddingModel,
	}

	started := time.Now()
	err = document.Reindex(c.Request.Context(), doc, creds)

	audit.Record(audit.Entry{
		UserEmail: email,
		QueryText: doc.FileName,
		QueryKind: model.QueryKindReindex,
		Provider:  creds.Resolved().Provider,
		Model:     creds.Resolved().EmbeddingModel,
		Started:   started,
		Success:   err == nil,
		Err:       err,
	})

	if err != nil {
		slog.Error(ErrReindexDocument.Error(),
			"document_id", documentID,
			"err", err,
		)
		c.AbortWithStatusJSON(statusFor(err), response.Response{
			Msg: userMessage(err, ErrReindexDocument.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

func parseFileType(fileName string) (model.FileType, error) {
	extension := strings.TrimPrefix(filepath.Ext(fileName), ".")
	switch fileType := model.FileType(strings.ToLower(extension)); fileType {
	case model.FileTypePDF, model.FileTypeMarkdown, model.FileTypeText, model.FileTypeCSV, model.FileTypeJSON:
		return fileType, nil
	default:
		return "", model.ErrUnsupportedFileType
	}
}

func toDocumentResponse(doc *model.Document) response.DocumentResponse {
	return response.DocumentResponse{
		ID:         doc.ID,
		FileName:   doc.FileName,
		FileType:   string(doc.FileType),
		FileSize:   doc.FileSize,
		Status:     string(doc.Status),
		FailReason: doc.FailReason,
		ChunkCount: doc.ChunkCount,
		Provider:   doc.EmbeddingProvider,
		Model:      doc.EmbeddingModel,
		CreatedAt:  doc.CreatedAt,
	}
}

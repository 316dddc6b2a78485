package controller

import (
	"errors"
	"finreport-backend/model"
	"net/http"
)

var (
	ErrParseRequest = errors.New("failed to parse request")

	ErrUserRegister  = errors.New("failed to register user")
	ErrGenerateToken = errors.New("failed to generate token")
	ErrUserLogin     = errors.New("failed to login")

	ErrCreateSession      = errors.New("failed to create a chat session")
	ErrSessionNotFound    = errors.New("session not found")
	ErrGetSessions        = errors.New("failed to get chat sessions")
	ErrDeleteSession      = errors.New("failed to delete a chat session")
	ErrGetSessionMessages = errors.New("failed to get session messages")
	ErrUpdateSessionTitle = errors.New("failed to update session title")

	ErrGetUploadedFile  = errors.New("failed to get uploaded file")
	ErrUploadDocument   = errors.New("failed to upload document")
	ErrGetDocuments     = errors.New("failed to get documents")
	ErrDeleteDocument   = errors.New("failed to delete document")
	ErrDocumentNotFound = errors.New("document not found")
	ErrReindexDocument  = errors.New("failed to reindex document")

	ErrAnswerQuery = errors.New("couldn't answer the question, please try again")

	ErrGetQueryLogs     = errors.New("failed to get query logs")
	ErrGetProviderStats = errors.New("failed to get provider stats")
	ErrPurgeQueryLogs   = errors.New("failed to purge query logs")
)

// statusFor 错误分类到HTTP状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrEncryptedDocument),
		errors.Is(err, model.ErrTextTooLong),
		errors.Is(err, model.ErrUnsupportedFileType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage 用户可见的失败提示，配置类错误不暴露细节
func userMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, model.ErrEncryptedDocument):
		return "file is password-protected: password missing or incorrect"
	case errors.Is(err, model.ErrUnsupportedFileType):
		return "unsupported file format"
	case errors.Is(err, model.ErrTextTooLong):
		return "a section of the document is too large to embed"
	case errors.Is(err, model.ErrProviderUnavailable):
		return "model provider unavailable, please try again later"
	default:
		return fallback
	}
}

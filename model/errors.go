package model

import "errors"

// 跨层错误分类，各层用 %w 包装后向入口传递
var (
	// 分块窗口/重叠配置非法，属运维错误，不向终端用户暴露细节
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// 文件加密且密码缺失或错误，可提示用户重新输入
	ErrEncryptedDocument = errors.New("document is encrypted")

	// 单条文本超出向量化长度上限，调用前检查，不依赖服务端报错
	ErrTextTooLong = errors.New("text exceeds embedding length limit")

	// 模型服务重试耗尽或超时，提示用户稍后再试
	ErrProviderUnavailable = errors.New("provider unavailable")

	// 存储层错误，当前请求直接失败，不做重试
	ErrStorageFailure = errors.New("storage failure")

	ErrUnsupportedFileType = errors.New("unsupported file type")
)

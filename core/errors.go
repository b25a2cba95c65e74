package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分层（见各算法包的降级链）：
//   - NOT_READY / REBUILD_FAILED 属于结构性错误，向调用方传播
//   - NOT_FOUND / INSUFFICIENT_DATA 属于算法级降级信号，引擎内部吸收
type DomainError struct {
	Code    string // 错误代码（如 "NOT_READY", "INSUFFICIENT_DATA"）
	Message string // 错误消息
	Module  string // 模块名称（如 "engine", "store", "recall"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotReady         = "NOT_READY"         // 引擎尚未完成首次构建
	ErrorCodeNotFound         = "NOT_FOUND"         // 用户/商品/key 不存在
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA" // 数据量不足以运行该算法
	ErrorCodeRebuildFailed    = "REBUILD_FAILED"    // 全量重建中途失败
	ErrorCodeNotSupported     = "NOT_SUPPORTED"     // 操作不支持
)

// 模块名称常量
const (
	ModuleEngine = "engine"
	ModuleStore  = "store"
	ModuleRecall = "recall"
)

func hasCode(err error, code string) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Code == code
}

// IsNotReady 检查错误是否为"引擎未就绪"。
func IsNotReady(err error) bool { return hasCode(err, ErrorCodeNotReady) }

// IsNotFound 检查错误是否为"资源不存在"。
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsInsufficientData 检查错误是否为"数据不足"。
func IsInsufficientData(err error) bool { return hasCode(err, ErrorCodeInsufficientData) }

// IsRebuildFailed 检查错误是否为"重建失败"。
func IsRebuildFailed(err error) bool { return hasCode(err, ErrorCodeRebuildFailed) }

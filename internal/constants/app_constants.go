package constants

import "time"

const (
	// Application-level constants
	ServiceName         = "resume-nlp-go"
	DefaultExtractorVer = "1.0" // 提取管线版本，用于健康检查输出

	// Storage-related constants
	ResultCacheDuration = 1 * time.Hour // 解析结果缓存的兜底过期时间
)

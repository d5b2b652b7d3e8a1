package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ParseModulePrefix 解析模块
	ParseModulePrefix = "parse"

	// EntityResult 解析结果实体
	EntityResult = "result"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"

	// KeyParseResult 解析结果缓存 (STRING)
	// 格式: app:parse:result:{文本MD5}
	KeyParseResult = AppPrefix + ":" + ParseModulePrefix + ":" + EntityResult + ":%s"

	// KeyParsedTextMD5Set 已解析文本MD5集合，用于快速判重 (SET)
	// 格式: app:parse:dedup_set
	KeyParsedTextMD5Set = AppPrefix + ":" + ParseModulePrefix + ":" + EntityDedupSet
)

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromFile 验证正确的 YAML 配置能否被成功加载并应用默认值
func TestLoadConfigFromFile(t *testing.T) {
	yamlContent := `
server:
  address: ":9090"
  api_keys:
    - "key-one"
    - "key-two"
parser:
  use_model: false
  patterns_dir: "/data/patterns"
redis:
  enabled: true
  address: "redis-host:6379"
  result_cache_expire_minutes: 15
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err, "无法写入临时配置文件")

	config, err := LoadConfig(configPath)

	require.NoError(t, err, "加载合法配置不应返回错误")
	require.NotNil(t, config, "配置对象不应为 nil")

	assert.Equal(t, ":9090", config.Server.Address)
	assert.Equal(t, []string{"key-one", "key-two"}, config.Server.APIKeys)
	assert.False(t, config.Parser.UseModel)
	assert.Equal(t, "/data/patterns", config.Parser.PatternsDir)
	assert.True(t, config.Redis.Enabled)
	assert.Equal(t, "redis-host:6379", config.Redis.Address)
	assert.Equal(t, 15, config.Redis.ResultCacheExpireMinutes)

	// 未在文件中出现的字段应当补上默认值
	assert.Equal(t, 10, config.Redis.PoolSize, "连接池大小应使用默认值")
	assert.Equal(t, "info", config.Logger.Level, "日志级别应使用默认值")
	assert.Equal(t, "resume-nlp-go", config.Tracing.ServiceName, "服务名应使用默认值")
}

// TestLoadConfigMissingFileInTest 测试环境下找不到配置文件时应回退到默认配置
func TestLoadConfigMissingFileInTest(t *testing.T) {
	config, err := LoadConfig(filepath.Join(os.TempDir(), "definitely-not-exists", "config.yaml"))

	require.NoError(t, err, "测试环境下缺少配置文件不应报错")
	require.NotNil(t, config)

	assert.Equal(t, ":8080", config.Server.Address)
	assert.True(t, config.Parser.UseModel, "模型开关默认打开")
	assert.False(t, config.Redis.Enabled, "结果缓存默认关闭")
}

// TestResultCacheTTL 验证缓存TTL换算
func TestResultCacheTTL(t *testing.T) {
	config := createDefaultConfig()
	config.Redis.ResultCacheExpireMinutes = 30

	assert.Equal(t, "30m0s", config.ResultCacheTTL().String())
}

// TestEnvOverrides 验证环境变量对配置文件的覆盖
func TestEnvOverrides(t *testing.T) {
	t.Setenv("RESUME_SERVER_ADDRESS", ":7070")
	t.Setenv("RESUME_USE_MODEL", "false")
	t.Setenv("RESUME_REDIS_ADDRESS", "env-redis:6379")

	yamlContent := `
server:
  address: ":9090"
parser:
  use_model: true
`
	tmpDir, err := os.MkdirTemp("", "config-test-env")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, ":7070", config.Server.Address, "环境变量应覆盖配置文件")
	assert.False(t, config.Parser.UseModel)
	assert.Equal(t, "env-redis:6379", config.Redis.Address)
	assert.True(t, config.Redis.Enabled, "指定Redis地址的环境变量应同时启用缓存")
}

package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"resume-nlp-go/internal/api/handler"
	"resume-nlp-go/internal/api/router"
	"resume-nlp-go/internal/config"
	"resume-nlp-go/internal/parser"
	"resume-nlp-go/internal/processor"
	"resume-nlp-go/internal/taxonomy"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine 组装一个不依赖外部服务的完整引擎：无Redis、无模型、无规则器
func newTestEngine(t *testing.T, cfg *config.Config) *server.Hertz {
	t.Helper()

	tax := taxonomy.NewDefaultStore()
	splitter, err := parser.NewSectionSplitter(tax)
	require.NoError(t, err)
	dict, err := parser.NewDictExtractor(tax)
	require.NoError(t, err)

	extractor, err := processor.NewResumeExtractor(
		&processor.Components{Taxonomy: tax, Splitter: splitter, Dict: dict},
		&processor.Settings{},
	)
	require.NoError(t, err)

	parseHandler := handler.NewParseHandler(cfg, nil, extractor)
	engine := server.New(server.WithHostPorts("127.0.0.1:0"))
	router.RegisterRoutes(engine, cfg, parseHandler, router.HealthInfo{})
	return engine
}

func postParse(engine *server.Hertz, body string, headers ...ut.Header) *ut.ResponseRecorder {
	buf := bytes.NewBufferString(body)
	args := append([]ut.Header{{Key: "Content-Type", Value: "application/json"}}, headers...)
	return ut.PerformRequest(engine.Engine, "POST", "/api/v1/resume/parse",
		&ut.Body{Body: buf, Len: buf.Len()}, args...)
}

// 验证text字段缺失或请求体非法时返回400与约定错误消息
func TestHandleParse_MissingText(t *testing.T) {
	engine := newTestEngine(t, &config.Config{})

	for _, body := range []string{`{}`, `{"text": ""}`, `not json`} {
		resp := postParse(engine, body)
		require.Equal(t, http.StatusBadRequest, resp.Code, "body: %s", body)

		var errResp map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
		assert.Equal(t, "Invalid request. 'text' field is required.", errResp["error"])
	}
}

// 验证一份完整简历文本能解析出全部字段，响应形状与线上契约一致
func TestHandleParse_Success(t *testing.T) {
	engine := newTestEngine(t, &config.Config{})

	reqBody, err := json.Marshal(map[string]string{
		"text": "Name: John Doe\n" +
			"john.doe@example.com | +1 (555) 123-4567\n\n" +
			"Skills:\nJava, Python, Docker\n\n" +
			"Experience:\nSoftware Engineer at Acme Technologies, Jan 2020 - Present\n",
	})
	require.NoError(t, err)

	resp := postParse(engine, string(reqBody))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))

	var parsed struct {
		FullName    *string `json:"fullName"`
		Email       *string `json:"email"`
		PhoneNumber *string `json:"phoneNumber"`
		Skills      []struct {
			SkillName string `json:"skillName"`
		} `json:"skills"`
		JobTitles     []string                 `json:"jobTitles"`
		Organizations []string                 `json:"organizations"`
		Experiences   []map[string]interface{} `json:"experiences"`
		Projects      []interface{}            `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &parsed))

	require.NotNil(t, parsed.FullName)
	assert.Equal(t, "John Doe", *parsed.FullName)
	require.NotNil(t, parsed.Email)
	assert.Equal(t, "john.doe@example.com", *parsed.Email)
	require.NotNil(t, parsed.PhoneNumber)
	assert.Equal(t, "+15551234567", *parsed.PhoneNumber)

	var skillNames []string
	for _, s := range parsed.Skills {
		skillNames = append(skillNames, s.SkillName)
	}
	assert.Contains(t, skillNames, "Java")
	assert.Contains(t, parsed.JobTitles, "Software Engineer")
	assert.Contains(t, parsed.Organizations, "Acme Technologies")
	require.Len(t, parsed.Experiences, 1)
	assert.NotNil(t, parsed.Projects)
	assert.Empty(t, parsed.Projects)
}

// 验证缺失的标量字段按契约输出null而不是空串
func TestHandleParse_NullScalars(t *testing.T) {
	engine := newTestEngine(t, &config.Config{})

	resp := postParse(engine, `{"text": "tinkered with Java and Docker for years"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["fullName"]))
	assert.Equal(t, "null", string(raw["email"]))
	assert.Equal(t, "null", string(raw["phoneNumber"]))
}

// 验证配置了API Key后，缺失或错误的密钥被401拒绝，正确密钥放行
func TestHandleParse_APIKeyAuth(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.APIKeys = []string{"secret-key"}
	engine := newTestEngine(t, cfg)

	resp := postParse(engine, `{"text": "Java developer"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = postParse(engine, `{"text": "Java developer"}`,
		ut.Header{Key: "X-Api-Key", Value: "wrong-key"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = postParse(engine, `{"text": "Java developer"}`,
		ut.Header{Key: "X-Api-Key", Value: "secret-key"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

// 验证配置了QPM后，超出令牌桶容量的突发请求被429限流
func TestHandleParse_RateLimited(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.RateLimitQPM = 2 // 容量为QPM的一半，即1个突发请求
	engine := newTestEngine(t, cfg)

	resp := postParse(engine, `{"text": "Java developer"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = postParse(engine, `{"text": "Java developer"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}

// 验证健康检查返回版本与能力开关
func TestHealthEndpoint(t *testing.T) {
	engine := newTestEngine(t, &config.Config{})

	resp := ut.PerformRequest(engine.Engine, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, false, health["cache_enabled"])
	assert.NotEmpty(t, health["version"])
}

package handler

import (
	"context"
	"errors"

	"resume-nlp-go/internal/config"
	"resume-nlp-go/internal/logger"
	"resume-nlp-go/internal/processor"
	"resume-nlp-go/internal/storage"
	"resume-nlp-go/internal/tracing"
	"resume-nlp-go/internal/types"
	pkgutils "resume-nlp-go/pkg/utils"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var handlerTracer = otel.Tracer("api/handler")

// ParseHandler 简历解析接口处理器，负责请求校验、缓存与响应映射
type ParseHandler struct {
	cfg       *config.Config
	storage   *storage.Storage
	extractor *processor.ResumeExtractor
}

// NewParseHandler 创建一个新的简历解析处理器
func NewParseHandler(
	cfg *config.Config,
	storage *storage.Storage,
	extractor *processor.ResumeExtractor,
) *ParseHandler {
	return &ParseHandler{
		cfg:       cfg,
		storage:   storage,
		extractor: extractor,
	}
}

// ParseRequest 解析请求体
type ParseRequest struct {
	Text string `json:"text"`
}

// SkillItem 响应中的单个技能
type SkillItem struct {
	SkillName string `json:"skillName"`
}

// HandleParse 处理 POST /api/v1/resume/parse
func (h *ParseHandler) HandleParse(ctx context.Context, c *app.RequestContext) {
	ctx, span := handlerTracer.Start(ctx, "HandleParse", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	// 请求ID，贯穿日志与响应头
	requestID := ""
	if id, err := uuid.NewV7(); err == nil {
		requestID = id.String()
		c.Header("X-Request-Id", requestID)
		span.SetAttributes(attribute.String("request.id", requestID))
	}

	var req ParseRequest
	if err := c.BindJSON(&req); err != nil || req.Text == "" {
		if err != nil {
			tracing.RecordHTTPError(span, err, consts.StatusBadRequest)
		}
		c.JSON(consts.StatusBadRequest, utils.H{
			"error": "Invalid request. 'text' field is required.",
		})
		return
	}

	span.SetAttributes(attribute.Int("text_length", len(req.Text)))

	// 结果缓存：同一份文本不重复解析
	textMD5 := pkgutils.CalculateMD5([]byte(req.Text))
	if h.storage.HasCache() {
		if cached, err := h.storage.Redis.GetCachedResult(ctx, textMD5); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			logger.Debug().Str("request_id", requestID).Str("md5", textMD5).Msg("解析结果缓存命中")
			c.JSON(consts.StatusOK, buildResponse(cached))
			return
		} else if !errors.Is(err, storage.ErrNotFound) {
			// 缓存故障只降级，不影响解析
			logger.Warn().Err(err).Str("md5", textMD5).Msg("读取解析结果缓存失败")
		}
	}

	result, err := h.extractor.Extract(ctx, req.Text)
	if err != nil {
		if errors.Is(err, processor.ErrEmptyInput) {
			c.JSON(consts.StatusBadRequest, utils.H{
				"error": "Invalid request. 'text' field is required.",
			})
			return
		}
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("content", tracing.SafeResumeContent(req.Text)).
			Msg("简历解析失败")
		c.JSON(consts.StatusInternalServerError, utils.H{
			"error":  "Parsing error",
			"detail": err.Error(),
		})
		return
	}

	if h.storage.HasCache() {
		if err := h.storage.Redis.CacheResult(ctx, textMD5, result); err != nil {
			logger.Warn().Err(err).Str("md5", textMD5).Msg("写入解析结果缓存失败")
		}
		if err := h.storage.Redis.MarkParsedTextMD5(ctx, textMD5); err != nil {
			logger.Warn().Err(err).Str("md5", textMD5).Msg("记录文本MD5去重集合失败")
		}
	}

	c.JSON(consts.StatusOK, buildResponse(result))
}

// buildResponse 把提取结果映射为线上响应结构
// 标量字段缺失输出null，集合字段缺失输出空数组
func buildResponse(result *types.ExtractionResult) utils.H {
	skills := make([]SkillItem, 0, len(result.Skills))
	for _, s := range result.Skills {
		skills = append(skills, SkillItem{SkillName: s})
	}
	jobTitles := result.JobTitles
	if jobTitles == nil {
		jobTitles = []string{}
	}
	organizations := result.Organizations
	if organizations == nil {
		organizations = []string{}
	}
	experiences := result.Experiences
	if experiences == nil {
		experiences = []types.ExperienceEntry{}
	}

	return utils.H{
		"fullName":      pkgutils.NullableString(result.FullName),
		"email":         pkgutils.NullableString(result.Email),
		"phoneNumber":   pkgutils.NullableString(result.PhoneNumber),
		"skills":        skills,
		"jobTitles":     jobTitles,
		"organizations": organizations,
		"experiences":   experiences,
		"projects":      []any{},
	}
}

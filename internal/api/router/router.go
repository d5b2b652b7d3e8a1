package router

import (
	"context"

	"resume-nlp-go/internal/api/handler"
	"resume-nlp-go/internal/config"
	"resume-nlp-go/internal/constants"
	"resume-nlp-go/pkg/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// HealthInfo 健康检查中上报的能力开关
type HealthInfo struct {
	ModelEnabled bool // 学习式识别引擎是否可用
	RulerEnabled bool // 规则标注器是否加载成功
	CacheEnabled bool // 结果缓存是否可用
}

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, parseHandler *handler.ParseHandler, info HealthInfo) {
	api := h.Group("/api/v1")

	// 配置了QPM时启用令牌桶限流
	if cfg.Server.RateLimitQPM > 0 {
		bucket := ratelimit.NewTokenBucket(cfg.Server.RateLimitQPM, 0)
		api.Use(func(ctx context.Context, c *app.RequestContext) {
			if !bucket.Allow() {
				c.AbortWithStatusJSON(consts.StatusTooManyRequests, utils.H{"error": "too many requests"})
				return
			}
			c.Next(ctx)
		})
	}

	// 配置了API Key时启用 X-Api-Key 鉴权
	if len(cfg.Server.APIKeys) > 0 {
		allowed := make(map[string]struct{}, len(cfg.Server.APIKeys))
		for _, key := range cfg.Server.APIKeys {
			allowed[key] = struct{}{}
		}
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:X-Api-Key", ""),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				_, ok := allowed[key]
				return ok, nil
			}),
			keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
				c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "unauthorized"})
			}),
		))
	}

	api.POST("/resume/parse", parseHandler.HandleParse)

	// 添加健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{
			"status":        "ok",
			"version":       constants.DefaultExtractorVer,
			"model_enabled": info.ModelEnabled,
			"ruler_enabled": info.RulerEnabled,
			"cache_enabled": info.CacheEnabled,
		})
	})
}

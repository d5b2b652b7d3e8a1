package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-nlp-go/internal/api/handler"
	"resume-nlp-go/internal/api/router"
	"resume-nlp-go/internal/config"
	"resume-nlp-go/internal/parser"
	"resume-nlp-go/internal/processor"
	"resume-nlp-go/internal/storage"
	"resume-nlp-go/internal/taxonomy"
	"resume-nlp-go/internal/tracing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/spf13/pflag"

	appCoreLogger "resume-nlp-go/internal/logger"

	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
)

// @title Resume NLP API
// @version 1.0
// @description Entity extraction service for resume plain text.
// @BasePath /api/v1
func main() {
	initLogger()

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 链路追踪（未启用时为no-op）
	shutdownTracing, err := tracing.InitProvider(ctx, &cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	// 领域词表与可选覆盖文件
	tax := taxonomy.NewDefaultStore()
	if cfg.Parser.TaxonomyOverlay != "" {
		if err := tax.LoadOverlay(cfg.Parser.TaxonomyOverlay); err != nil {
			glog.Fatalf("加载词表覆盖文件失败: %v", err)
		}
		glog.Infof("词表覆盖文件已加载: %s", cfg.Parser.TaxonomyOverlay)
	}

	splitter, err := parser.NewSectionSplitter(tax)
	if err != nil {
		glog.Fatalf("初始化章节分割器失败: %v", err)
	}
	dict, err := parser.NewDictExtractor(tax)
	if err != nil {
		glog.Fatalf("初始化词典抽取器失败: %v", err)
	}

	// 规则标注器：模式文件缺失或损坏时只降级，不阻塞启动
	var ruler *parser.EntityRuler
	if cfg.Parser.PatternsDir != "" {
		ruler, err = parser.NewEntityRulerFromDir(cfg.Parser.PatternsDir)
		if err != nil {
			glog.Warnf("加载实体模式目录失败 (%s): %v, 规则标注器不可用", cfg.Parser.PatternsDir, err)
			ruler = nil
		} else {
			glog.Infof("规则标注器加载成功, 模式数: %d", ruler.PatternCount())
		}
	}

	// 当前没有进程内的学习式识别引擎实现，模型槽位留空，
	// use_model 开关只决定将来接入的引擎是否参与识别链
	procComponents := &processor.Components{
		Taxonomy: tax,
		Splitter: splitter,
		Dict:     dict,
		Ruler:    ruler,
	}
	procSettings := &processor.Settings{
		UseModel: cfg.Parser.UseModel,
		Logger:   &appCoreLogger.Logger,
	}
	extractor, err := processor.NewResumeExtractor(procComponents, procSettings)
	if err != nil {
		glog.Fatalf("初始化简历提取器失败: %v", err)
	}
	glog.Info("ResumeExtractor初始化成功")

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	parseHandler := handler.NewParseHandler(cfg, storageManager, extractor)
	glog.Info("ParseHandler初始化成功")

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)

	router.RegisterRoutes(h, cfg, parseHandler, router.HealthInfo{
		ModelEnabled: cfg.Parser.UseModel && procComponents.Model != nil,
		RulerEnabled: ruler != nil && ruler.PatternCount() > 0,
		CacheEnabled: storageManager.HasCache(),
	})
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Warnf("关闭链路追踪导出器失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

func initLogger() {
	logFilePath := "logs/app.log"
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Fatalf("无法创建日志目录: %v", err)
	}
	fileWriter, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("无法打开日志文件 %s: %v", logFilePath, err) // Use std log here as glog might not be set up
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	multiWriter := zerolog.MultiLevelWriter(consoleWriter, fileWriter)

	level := zerolog.InfoLevel
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = "15:04:05"

	logger := zerolog.New(multiWriter).With().Timestamp().Caller().Logger()

	// 同步到应用logger与zerolog全局logger
	appCoreLogger.Logger = logger
	zlog.Logger = logger

	// 将同一个logger通过适配器接入Hertz的glog
	hertzCompatibleLogger := hertzadapter.From(appCoreLogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
	glog.SetLevel(glog.LevelInfo)

	log.Println("Logger initialized with Zerolog (appCoreLogger & glog via adapter), writing to console and file:", logFilePath)
}

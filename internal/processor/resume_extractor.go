package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-nlp-go/internal/parser"
	"resume-nlp-go/internal/taxonomy"
	"resume-nlp-go/internal/types"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// 定义tracer
var tracer = otel.Tracer("processor")

var (
	ErrTaxonomyNotInit = errors.New("taxonomy is not initialized") // 词表未初始化错误
	ErrSplitterNotInit = errors.New("splitter is not initialized") // 分节器未初始化错误
	ErrDictNotInit     = errors.New("dict extractor is not initialized")
)

// Components 提取管线的组件依赖
type Components struct {
	Taxonomy *taxonomy.Store        // 领域词表
	Splitter *parser.SectionSplitter // 章节分割器
	Dict     *parser.DictExtractor  // 词典/正则抽取器
	Model    parser.Recognizer      // 学习式识别引擎（可为空）
	Ruler    *parser.EntityRuler    // 模式规则标注器（可为空）
}

// Settings 提取管线的行为设置
type Settings struct {
	UseModel bool            // 是否启用学习式识别引擎
	Logger   *zerolog.Logger // 日志记录器
}

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// WithcompModel 设置学习式识别引擎组件
func WithcompModel(model parser.Recognizer) ComponentOpt {
	return func(c *Components) {
		c.Model = model
	}
}

// WithcompRuler 设置模式规则标注器组件
func WithcompRuler(ruler *parser.EntityRuler) ComponentOpt {
	return func(c *Components) {
		c.Ruler = ruler
	}
}

// WithsetUsemodel 设置是否启用学习式识别引擎
func WithsetUsemodel(use bool) SettingOpt {
	return func(s *Settings) {
		s.UseModel = use
	}
}

// WithsetLogger 设置日志记录器
func WithsetLogger(logger *zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = logger
	}
}

// ResumeExtractor 简历实体提取器
// 采用Facade模式：组合章节分割、词典抽取、规则/模型实体识别与经历匹配，
// 对外只暴露 Extract 一个入口
type ResumeExtractor struct {
	components Components
	settings   Settings

	recognizer parser.Recognizer        // 规则标注器 + 可选模型组成的识别链
	expMatcher *parser.ExperienceMatcher // 经历块匹配器
}

// NewResumeExtractor 创建简历实体提取器
// 必填组件缺失时返回错误；Model/Ruler 允许为空，此时对应能力自动降级
func NewResumeExtractor(components *Components, settings *Settings, opts ...SettingOpt) (*ResumeExtractor, error) {
	if components == nil {
		components = &Components{}
	}
	if settings == nil {
		settings = &Settings{}
	}
	for _, opt := range opts {
		opt(settings)
	}
	if settings.Logger == nil {
		nop := zerolog.Nop()
		settings.Logger = &nop
	}

	if components.Taxonomy == nil {
		return nil, ErrTaxonomyNotInit
	}
	if components.Splitter == nil {
		return nil, ErrSplitterNotInit
	}
	if components.Dict == nil {
		return nil, ErrDictNotInit
	}

	// 组装识别链：模型开关只控制模型槽位，规则标注器始终在链上
	var base parser.Recognizer = parser.NoopRecognizer{}
	if settings.UseModel && components.Model != nil {
		base = components.Model
	}
	recognizer := parser.InstallRuler(base, components.Ruler)

	return &ResumeExtractor{
		components: *components,
		settings:   *settings,
		recognizer: recognizer,
		expMatcher: parser.NewExperienceMatcher(recognizer, components.Dict),
	}, nil
}

// Extract 对一份简历纯文本执行完整的实体提取
// 任何内部 panic 都会被捕获并转换为错误返回，不会让调用方崩溃
func (e *ResumeExtractor) Extract(ctx context.Context, text string) (result *types.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewExtractError("pipeline", fmt.Sprintf("panic: %v", r))
			e.settings.Logger.Error().Interface("panic", r).Msg("提取管线发生panic，已降级为错误返回")
		}
	}()

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	ctx, span := tracer.Start(ctx, "ExtractResumeEntities",
		trace.WithAttributes(attribute.Int("text_length", len(text))))
	defer span.End()

	// 1. 章节分割
	_, segSpan := tracer.Start(ctx, "SegmentSections")
	sections := e.components.Splitter.Split(text)
	segSpan.SetAttributes(attribute.Int("section_count", len(sections)))
	segSpan.End()

	// 2. 全文实体识别（规则标注器 + 可选模型）
	ents, tagErr := e.recognizer.Tag(ctx, text)
	if tagErr != nil {
		// 识别引擎失败不致命，词典路径仍然可用
		e.settings.Logger.Warn().Err(tagErr).Msg("实体识别引擎失败，仅使用词典抽取")
		ents = nil
	}
	span.SetAttributes(attribute.Int("entity_count", len(ents)))

	// 3. 词典/正则抽取
	dictSkills := e.components.Dict.Skills(text)
	dictTitles := e.components.Dict.JobTitles(text)
	dictOrgs := e.components.Dict.Organizations(text)

	// 4. 实体标签归类，技能在并入前同样做停用词过滤与规范化
	entSkills := map[string]struct{}{}
	entTitles := map[string]struct{}{}
	entOrgs := map[string]struct{}{}
	person := ""
	for _, ent := range ents {
		switch {
		case ent.Label == types.LabelSkill:
			if e.components.Taxonomy.IsSkillStopword(ent.Text) {
				continue
			}
			if canon := e.components.Taxonomy.CanonicalSkill(ent.Text); canon != "" {
				entSkills[canon] = struct{}{}
			}
		case ent.Label == types.LabelJobTitle:
			entTitles[ent.Text] = struct{}{}
		case ent.IsOrg():
			entOrgs[ent.Text] = struct{}{}
		case ent.Label == types.LabelPerson:
			if person == "" {
				person = strings.TrimSpace(ent.Text)
			}
		}
	}

	// 5. 标量字段的择优策略
	//    姓名：识别引擎的 PERSON 优先于启发式回退
	//    邮箱：整 token 匹配优先于子串正则
	//    电话：只走正则路径
	name := person
	if name == "" {
		name = e.components.Dict.NameFallback(text)
	}
	email := e.components.Dict.TokenEmail(text)
	if email == "" {
		email = e.components.Dict.Email(text)
	}
	phone := e.components.Dict.Phone(text)

	// 6. 经历章节结构化
	_, expSpan := tracer.Start(ctx, "MatchExperiences")
	experiences := e.expMatcher.Extract(ctx, sections[types.SectionExperience])
	expSpan.SetAttributes(attribute.Int("experience_count", len(experiences)))
	expSpan.End()

	result = &types.ExtractionResult{
		FullName:      name,
		Email:         email,
		PhoneNumber:   phone,
		Skills:        parser.MergeSets(dictSkills, entSkills),
		JobTitles:     parser.MergeSets(dictTitles, entTitles),
		Organizations: parser.MergeSets(dictOrgs, entOrgs),
		Experiences:   experiences,
	}

	span.SetAttributes(
		attribute.Int("skill_count", len(result.Skills)),
		attribute.Int("job_title_count", len(result.JobTitles)),
		attribute.Int("organization_count", len(result.Organizations)),
	)
	span.SetStatus(codes.Ok, "提取成功")

	e.settings.Logger.Debug().
		Int("skills", len(result.Skills)).
		Int("job_titles", len(result.JobTitles)).
		Int("organizations", len(result.Organizations)).
		Int("experiences", len(result.Experiences)).
		Msg("简历实体提取完成")

	return result, nil
}

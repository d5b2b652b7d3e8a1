package parser

import (
	"context"
	"sort"

	"resume-nlp-go/internal/types"
)

// Recognizer 识别引擎的能力契约
// 实现方至少需要支持 PERSON / DATE 标签，可选支持 SKILL / JOB_TITLE / ORG。
// 对所有标签都返回零实体是合法的运行模式（纯字典模式），不是错误状态。
type Recognizer interface {
	Tag(ctx context.Context, text string) ([]types.Entity, error)
}

// NoopRecognizer 空实现，对应纯字典模式
type NoopRecognizer struct{}

// Tag 恒返回零实体
func (NoopRecognizer) Tag(ctx context.Context, text string) ([]types.Entity, error) {
	return nil, nil
}

// ChainRecognizer 把规则标注器安装在基础识别器之前
// 两者对同一片段都有标注时，规则标注优先；任一侧失败都按零实体降级，
// 绝不让识别失败向上传播
type ChainRecognizer struct {
	primary Recognizer
	base    Recognizer
}

// NewChainRecognizer 组合规则标注器与基础识别器
func NewChainRecognizer(primary, base Recognizer) *ChainRecognizer {
	return &ChainRecognizer{primary: primary, base: base}
}

// Tag 合并两侧实体：primary 的标注遮蔽 base 中与之重叠的片段
func (c *ChainRecognizer) Tag(ctx context.Context, text string) ([]types.Entity, error) {
	var merged []types.Entity

	var primaryEnts []types.Entity
	if c.primary != nil {
		if ents, err := c.primary.Tag(ctx, text); err == nil {
			primaryEnts = ents
		}
	}
	merged = append(merged, primaryEnts...)

	if c.base != nil {
		baseEnts, err := c.base.Tag(ctx, text)
		if err == nil {
			for _, ent := range baseEnts {
				if !overlapsAny(ent, primaryEnts) {
					merged = append(merged, ent)
				}
			}
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Start != merged[j].Start {
			return merged[i].Start < merged[j].Start
		}
		return merged[i].End > merged[j].End
	})
	return merged, nil
}

func overlapsAny(ent types.Entity, others []types.Entity) bool {
	for _, o := range others {
		if ent.Start < o.End && o.Start < ent.End {
			return true
		}
	}
	return false
}

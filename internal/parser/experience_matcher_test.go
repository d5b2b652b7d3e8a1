package parser

import (
	"context"
	"strings"
	"testing"

	"resume-nlp-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// phraseTagger 测试用识别器，对给定短语做精确子串标注
type phraseTagger struct {
	phrases []struct{ phrase, label string }
}

func (p phraseTagger) add(phrase, label string) phraseTagger {
	p.phrases = append(p.phrases, struct{ phrase, label string }{phrase, label})
	return p
}

func (p phraseTagger) Tag(ctx context.Context, text string) ([]types.Entity, error) {
	var ents []types.Entity
	for _, pp := range p.phrases {
		from := 0
		for {
			idx := strings.Index(text[from:], pp.phrase)
			if idx < 0 {
				break
			}
			start := from + idx
			ents = append(ents, types.Entity{
				Text:  pp.phrase,
				Label: pp.label,
				Start: start,
				End:   start + len(pp.phrase),
			})
			from = start + len(pp.phrase)
		}
	}
	return ents, nil
}

// TestExperienceTitleAtOrg "职位 at 组织" 加显式日期区间
func TestExperienceTitleAtOrg(t *testing.T) {
	tagger := phraseTagger{}.
		add("Software Engineer", types.LabelJobTitle).
		add("Acme Technologies", types.LabelOrg)
	m := NewExperienceMatcher(tagger, nil)

	entries := m.Extract(context.Background(),
		"Software Engineer at Acme Technologies, Jan 2020 - Present")

	require.Len(t, entries, 1)
	assert.Equal(t, "Software Engineer", entries[0].JobTitle)
	assert.Equal(t, "Acme Technologies", entries[0].CompanyName)
	assert.Equal(t, "Jan 2020 - Present", entries[0].DateRange)
}

// TestExperienceOrgTitle "组织 - 职位" 顺序，年份区间用to连接
func TestExperienceOrgTitle(t *testing.T) {
	tagger := phraseTagger{}.
		add("Software Engineer", types.LabelJobTitle).
		add("Acme Technologies", types.LabelOrganization)
	m := NewExperienceMatcher(tagger, nil)

	entries := m.Extract(context.Background(),
		"Acme Technologies - Software Engineer\n2019 to 2021")

	require.Len(t, entries, 1)
	assert.Equal(t, "Software Engineer", entries[0].JobTitle)
	assert.Equal(t, "Acme Technologies", entries[0].CompanyName)
	assert.Equal(t, "2019 - 2021", entries[0].DateRange)
}

// TestExperienceTitleCommaOrg "职位, 组织" 顺序，无日期
func TestExperienceTitleCommaOrg(t *testing.T) {
	tagger := phraseTagger{}.
		add("Software Engineer", types.LabelJobTitle).
		add("Acme Technologies", types.LabelOrg)
	m := NewExperienceMatcher(tagger, nil)

	entries := m.Extract(context.Background(), "Software Engineer, Acme Technologies")

	require.Len(t, entries, 1)
	assert.Equal(t, "Software Engineer", entries[0].JobTitle)
	assert.Equal(t, "Acme Technologies", entries[0].CompanyName)
	assert.Equal(t, "", entries[0].DateRange)
}

// TestExperienceBulletsAndBlocks 空行分块，项目符号剥离，跨行拼接
func TestExperienceBulletsAndBlocks(t *testing.T) {
	tagger := phraseTagger{}.
		add("Backend Developer", types.LabelJobTitle).
		add("Globex Inc", types.LabelOrg).
		add("DevOps Engineer", types.LabelJobTitle).
		add("Initech Labs", types.LabelOrg)
	m := NewExperienceMatcher(tagger, nil)

	text := "• Backend Developer at\n- Globex Inc\n\n* DevOps Engineer at Initech Labs"
	entries := m.Extract(context.Background(), text)

	require.Len(t, entries, 2)
	assert.Equal(t, "Globex Inc", entries[0].CompanyName)
	assert.Equal(t, "Initech Labs", entries[1].CompanyName)
}

// TestExperienceConsecutiveDedup 相邻重复条目只保留一条（不区分大小写）
func TestExperienceConsecutiveDedup(t *testing.T) {
	tagger := phraseTagger{}.
		add("Software Engineer", types.LabelJobTitle).
		add("SOFTWARE ENGINEER", types.LabelJobTitle).
		add("Acme Technologies", types.LabelOrg).
		add("ACME TECHNOLOGIES", types.LabelOrg)
	m := NewExperienceMatcher(tagger, nil)

	text := "Software Engineer at Acme Technologies\n\nSOFTWARE ENGINEER at ACME TECHNOLOGIES"
	entries := m.Extract(context.Background(), text)

	require.Len(t, entries, 1)
	assert.Equal(t, "Software Engineer", entries[0].JobTitle)
}

// TestExperienceEntityFallback 规则不命中时，块内任意位置的实体兜底
func TestExperienceEntityFallback(t *testing.T) {
	tagger := phraseTagger{}.add("Acme Technologies", types.LabelOrg)
	m := NewExperienceMatcher(tagger, nil)

	entries := m.Extract(context.Background(),
		"led the platform migration for Acme Technologies")

	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].JobTitle)
	assert.Equal(t, "Acme Technologies", entries[0].CompanyName)
}

// TestExperienceDictFallback 无识别器实体时退到词表抽取
func TestExperienceDictFallback(t *testing.T) {
	m := NewExperienceMatcher(nil, newTestDict(t))

	entries := m.Extract(context.Background(), "backend developer at Initech Labs")

	require.Len(t, entries, 1)
	assert.Equal(t, "Backend Developer", entries[0].JobTitle)
	assert.Equal(t, "Initech Labs", entries[0].CompanyName)
}

// TestExperienceDictFallbackSentenceFinal 块以句号结尾时词表退路照常命中
func TestExperienceDictFallbackSentenceFinal(t *testing.T) {
	m := NewExperienceMatcher(nil, newTestDict(t))

	entries := m.Extract(context.Background(), "Initech Labs hired me as a backend developer.")

	require.Len(t, entries, 1)
	assert.Equal(t, "Backend Developer", entries[0].JobTitle)
	assert.Equal(t, "Initech Labs", entries[0].CompanyName)
}

// TestExperienceDateEntityFallback 显式区间缺失时用DATE实体拼日期
func TestExperienceDateEntityFallback(t *testing.T) {
	tagger := phraseTagger{}.
		add("Acme Technologies", types.LabelOrg).
		add("early spring", types.LabelDate).
		add("late autumn", types.LabelDate)
	m := NewExperienceMatcher(tagger, nil)

	entries := m.Extract(context.Background(),
		"Acme Technologies engagement from early spring into late autumn")

	require.Len(t, entries, 1)
	assert.Equal(t, "early spring - late autumn", entries[0].DateRange)
}

// TestExperienceNoiseDiscarded 过短的块与全空条目不产出结果
func TestExperienceNoiseDiscarded(t *testing.T) {
	m := NewExperienceMatcher(nil, nil)

	assert.Empty(t, m.Extract(context.Background(), ""))
	assert.Empty(t, m.Extract(context.Background(), "Go\n\nabc"))
	assert.Empty(t, m.Extract(context.Background(), "worked on many interesting problems"))
}

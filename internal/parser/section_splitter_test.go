package parser

import (
	"testing"

	"resume-nlp-go/internal/taxonomy"
	"resume-nlp-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSplitter(t *testing.T) *SectionSplitter {
	t.Helper()
	sp, err := NewSectionSplitter(taxonomy.NewDefaultStore())
	require.NoError(t, err)
	return sp
}

// TestSplitBasicSections 标准简历按标题切分为规范章节
func TestSplitBasicSections(t *testing.T) {
	sp := newTestSplitter(t)

	text := "John Doe\n" +
		"Professional Summary:\n" +
		"Seasoned backend engineer.\n" +
		"\n" +
		"Work Experience\n" +
		"Software Engineer at Acme Inc, Jan 2020 - Present\n" +
		"\n" +
		"Technical Skills:\n" +
		"Java, Python, Docker\n"

	sections := sp.Split(text)

	assert.Equal(t, "Seasoned backend engineer.", sections[types.SectionSummary])
	assert.Equal(t, "Software Engineer at Acme Inc, Jan 2020 - Present", sections[types.SectionExperience])
	assert.Equal(t, "Java, Python, Docker", sections[types.SectionSkills])
}

// TestSplitHeadingVariants 同义标题全部归到同一个规范键
func TestSplitHeadingVariants(t *testing.T) {
	sp := newTestSplitter(t)

	variants := map[string]types.SectionType{
		"EMPLOYMENT HISTORY": types.SectionExperience,
		"Career History":     types.SectionExperience,
		"Tech Stack":         types.SectionSkills,
		"Academics":          types.SectionEducation,
		"Licences":           types.SectionCertifications,
		"About Me":           types.SectionSummary,
	}

	for heading, want := range variants {
		text := heading + "\ncontent line\n"
		sections := sp.Split(text)
		assert.Equal(t, "content line", sections[want], "heading=%q", heading)
	}
}

// TestSplitMidSentenceHeadingIgnored 行内出现的标题短语不是章节分界
func TestSplitMidSentenceHeadingIgnored(t *testing.T) {
	sp := newTestSplitter(t)

	text := "Summary\nI have broad work experience in distributed systems.\n"
	sections := sp.Split(text)

	assert.Equal(t,
		"I have broad work experience in distributed systems.",
		sections[types.SectionSummary])
	_, hasExperience := sections[types.SectionExperience]
	assert.False(t, hasExperience, "行内的 work experience 不应开启新章节")
}

// TestSplitNoHeadings 没有任何标题时整份文本归入summary
func TestSplitNoHeadings(t *testing.T) {
	sp := newTestSplitter(t)

	text := "Jane Smith\njane@example.com\nBuilt many systems."
	sections := sp.Split(text)

	require.Len(t, sections, 1)
	assert.Equal(t, text, sections[types.SectionSummary])
}

// TestSplitDuplicateHeadings 同一规范章节的多个标题按文档顺序拼接
func TestSplitDuplicateHeadings(t *testing.T) {
	sp := newTestSplitter(t)

	text := "Experience\nfirst stint\n\nWork History\nsecond stint\n"
	sections := sp.Split(text)

	assert.Equal(t, "first stint", sections[types.SectionExperience][:len("first stint")])
	assert.Contains(t, sections[types.SectionExperience], "second stint")
	assert.Equal(t, "first stint\n\nsecond stint", sections[types.SectionExperience])
}

// TestSplitCRLF Windows换行的标题也能识别
func TestSplitCRLF(t *testing.T) {
	sp := newTestSplitter(t)

	text := "Skills:\r\nGo, Rust\r\n"
	sections := sp.Split(text)

	assert.Equal(t, "Go, Rust", sections[types.SectionSkills])
}

// TestSplitEmptyInput 空文本返回空映射
func TestSplitEmptyInput(t *testing.T) {
	sp := newTestSplitter(t)
	assert.Empty(t, sp.Split(""))
}

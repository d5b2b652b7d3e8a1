package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"resume-nlp-go/internal/taxonomy"
	"resume-nlp-go/internal/types"
)

// SectionSplitter 按标题同义词把简历文本切分为规范章节
// 标题只在整行粒度上匹配：行内出现的标题短语不会被当作章节分界
type SectionSplitter struct {
	headingRegex   *regexp.Regexp
	canonBySynonym map[string]types.SectionType
}

// NewSectionSplitter 根据词表中的章节同义词编译标题正则
func NewSectionSplitter(tax *taxonomy.Store) (*SectionSplitter, error) {
	canonBySynonym := make(map[string]types.SectionType)
	var synonyms []string
	for canon, syns := range tax.SectionSynonyms {
		for _, syn := range syns {
			key := strings.ToLower(syn)
			canonBySynonym[key] = canon
			synonyms = append(synonyms, key)
		}
	}
	if len(synonyms) == 0 {
		return nil, fmt.Errorf("章节同义词表为空")
	}

	// 长词优先，避免短同义词抢先吞掉长标题
	sort.Slice(synonyms, func(i, j int) bool { return len(synonyms[i]) > len(synonyms[j]) })
	escaped := make([]string, len(synonyms))
	for i, s := range synonyms {
		escaped[i] = regexp.QuoteMeta(s)
	}

	// 整行匹配：可选前后空白、可选末尾冒号，忽略大小写
	pattern := `(?im)^[ \t]*(` + strings.Join(escaped, "|") + `)[ \t]*:?[ \t]*\r?$`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("编译章节标题正则失败: %w", err)
	}

	return &SectionSplitter{
		headingRegex:   re,
		canonBySynonym: canonBySynonym,
	}, nil
}

// Split 把简历文本切分为规范章节映射
// 未识别到任何标题时，整份文本归入 summary；
// 同一规范章节出现多个标题变体时，内容按文档顺序以空行拼接
func (sp *SectionSplitter) Split(text string) types.SectionMap {
	sections := make(types.SectionMap)
	if text == "" {
		return sections
	}

	matches := sp.headingRegex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		sections[types.SectionSummary] = strings.TrimSpace(text)
		return sections
	}

	for idx, m := range matches {
		rawHead := strings.ToLower(strings.TrimSpace(text[m[2]:m[3]]))
		canon, ok := sp.canonBySynonym[rawHead]
		if !ok {
			continue
		}
		// 章节内容从标题行末尾开始，到下一个标题行起始或文本末尾为止
		start := m[1]
		end := len(text)
		if idx+1 < len(matches) {
			end = matches[idx+1][0]
		}
		content := strings.TrimSpace(text[start:end])
		if content == "" {
			continue
		}
		if prev, exists := sections[canon]; exists && prev != "" {
			sections[canon] = prev + "\n\n" + content
		} else {
			sections[canon] = content
		}
	}

	return sections
}

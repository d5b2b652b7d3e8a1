package parser

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"resume-nlp-go/internal/types"
)

// minBlockLen 小于该长度的块视为噪音直接丢弃
const minBlockLen = 5

// bulletRegex 匹配行首的项目符号（- • ◦ ‣ ∙ *）
var bulletRegex = regexp.MustCompile(`^[-\x{2022}\x{2023}\x{25E6}\x{2043}\x{2219}*]+\s*`)

// spaceRegex 压缩块内连续空白
var spaceRegex = regexp.MustCompile(`\s+`)

// dateRangeRegex 匹配 "<月 年|年> <分隔符> <月 年|年|Present|...>" 形式的日期区间
var dateRangeRegex = regexp.MustCompile(
	`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\s+\d{4}|\d{4})\s*` +
		`(?:-|–|—|to|through|until)\s*` +
		`(Present|Current|Till date|Until now|Now|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\s+\d{4}|\d{4})`)

// taggedToken 带实体标签的词元
type taggedToken struct {
	text    string
	lower   string
	start   int
	end     int
	label   string
	isPunct bool
}

// ruleOp 规则元素的量词
type ruleOp int

const (
	opOne  ruleOp = iota // 恰好一个
	opPlus               // 一个或多个
	opOpt                // 零个或一个
)

// rulePart 规则中的一个元素：谓词 + 量词
type rulePart struct {
	match func(taggedToken) bool
	op    ruleOp
}

// matchRule 有序规则，对带标签的词元序列做纯函数式匹配
type matchRule struct {
	name  string
	parts []rulePart
}

func isJobTitleToken(t taggedToken) bool { return t.label == types.LabelJobTitle }
func isOrgToken(t taggedToken) bool {
	return t.label == types.LabelOrg || t.label == types.LabelOrganization
}
func isPunctToken(t taggedToken) bool { return t.isPunct }

func lowerIn(words ...string) func(taggedToken) bool {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return func(t taggedToken) bool {
		_, ok := set[t.lower]
		return ok
	}
}

// experienceRules 经历匹配规则，按声明顺序逐条尝试，
// 每个字段由第一条产出非空候选的规则决定
var experienceRules = []matchRule{
	{
		// 职位在前，连接词，组织在后："Software Engineer at Acme Technologies"
		name: "title_at_org",
		parts: []rulePart{
			{match: isJobTitleToken, op: opPlus},
			{match: lowerIn("at", "@", "with", "-", "–", "—"), op: opOne},
			{match: isOrgToken, op: opPlus},
		},
	},
	{
		// 组织在前，职位在后："Acme Technologies - Software Engineer"
		name: "org_title",
		parts: []rulePart{
			{match: isOrgToken, op: opPlus},
			{match: isPunctToken, op: opOpt},
			{match: lowerIn("-", "–", "—", "@", "as", ":", ","), op: opOpt},
			{match: isJobTitleToken, op: opPlus},
		},
	},
	{
		// 职位后跟逗号与组织："Software Engineer, Acme Technologies"
		name: "title_comma_org",
		parts: []rulePart{
			{match: isJobTitleToken, op: opPlus},
			{match: isPunctToken, op: opOpt},
			{match: lowerIn(",", "-", "–", "—"), op: opOpt},
			{match: isOrgToken, op: opPlus},
		},
	},
}

// ExperienceMatcher 从经历章节还原 (职位, 公司, 日期区间) 三元组
// 每个块独立走规则级联，任一字段失败只降级为空，不中断整体解析
type ExperienceMatcher struct {
	recognizer Recognizer
	dict       *DictExtractor
}

// NewExperienceMatcher 组装经历匹配器
func NewExperienceMatcher(recognizer Recognizer, dict *DictExtractor) *ExperienceMatcher {
	if recognizer == nil {
		recognizer = NoopRecognizer{}
	}
	return &ExperienceMatcher{recognizer: recognizer, dict: dict}
}

// Extract 解析经历章节文本，返回保留文档顺序的结构化经历列表
func (m *ExperienceMatcher) Extract(ctx context.Context, experienceText string) []types.ExperienceEntry {
	var results []types.ExperienceEntry
	if experienceText == "" {
		return results
	}

	for _, block := range splitBlocks(experienceText) {
		entry, ok := m.matchBlock(ctx, block)
		if !ok {
			continue
		}
		// 与上一条保留的结果逐字段（不区分大小写）相同则丢弃
		if len(results) > 0 && sameEntry(results[len(results)-1], entry) {
			continue
		}
		results = append(results, entry)
	}
	return results
}

// splitBlocks 按空行把章节切成块，块内各行去掉项目符号后用单个空格拼接
func splitBlocks(text string) []string {
	var blocks []string
	var buf []string
	flush := func() {
		if len(buf) == 0 {
			return
		}
		block := strings.Join(buf, " ")
		buf = buf[:0]
		if len(block) >= minBlockLen {
			blocks = append(blocks, block)
		}
	}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()
			continue
		}
		buf = append(buf, cleanLine(line))
	}
	flush()
	return blocks
}

// cleanLine 去掉行首项目符号并压缩空白
func cleanLine(line string) string {
	line = bulletRegex.ReplaceAllString(line, "")
	return strings.TrimSpace(spaceRegex.ReplaceAllString(line, " "))
}

// matchBlock 对单个块执行标注、规则匹配与回退级联
func (m *ExperienceMatcher) matchBlock(ctx context.Context, block string) (types.ExperienceEntry, bool) {
	ents, err := m.recognizer.Tag(ctx, block)
	if err != nil {
		ents = nil
	}
	tokens := tagTokens(block, ents)

	var title, org string
	for _, rule := range experienceRules {
		for _, window := range findRuleMatches(rule, tokens) {
			candTitle := longestLabeledSpan(ents, window, isTitleEntity)
			candOrg := longestLabeledSpan(ents, window, isOrgEntity)
			if title == "" && candTitle != "" {
				title = candTitle
			}
			if org == "" && candOrg != "" {
				org = candOrg
			}
			if title != "" && org != "" {
				break
			}
		}
		if title != "" && org != "" {
			break
		}
	}

	// 回退级联(a)：块内任意位置最长的同标签实体
	if title == "" {
		title = longestLabeledSpan(ents, span{0, len(block)}, isTitleEntity)
	}
	if org == "" {
		org = longestLabeledSpan(ents, span{0, len(block)}, isOrgEntity)
	}

	// 回退级联(b)：词表抽取器在原始块文本上的最长命中
	if title == "" && m.dict != nil {
		title = longestOf(m.dict.JobTitles(block))
	}
	if org == "" && m.dict != nil {
		org = longestOf(m.dict.Organizations(block))
	}

	dateRange := detectDateRange(block, ents)

	entry := types.ExperienceEntry{JobTitle: title, CompanyName: org, DateRange: dateRange}
	return entry, !entry.AllEmpty()
}

type span struct {
	start, end int
}

func isTitleEntity(e types.Entity) bool { return e.Label == types.LabelJobTitle }
func isOrgEntity(e types.Entity) bool   { return e.IsOrg() }

// longestLabeledSpan 返回完全落在窗口内、满足谓词的最长实体文本
func longestLabeledSpan(ents []types.Entity, window span, pred func(types.Entity) bool) string {
	best := ""
	for _, e := range ents {
		if !pred(e) || e.Start < window.start || e.End > window.end {
			continue
		}
		text := strings.TrimSpace(e.Text)
		if len(text) > len(best) {
			best = text
		}
	}
	return best
}

// longestOf 取集合中最长的元素（等长时取字典序较小者，保证确定性）
func longestOf(set map[string]struct{}) string {
	best := ""
	for item := range set {
		if len(item) > len(best) || (len(item) == len(best) && item < best) {
			best = item
		}
	}
	return best
}

// detectDateRange 日期区间检测：优先显式区间正则，
// 其次用识别出的 DATE 实体（两个以上取前两个拼接，恰好一个单独使用）
func detectDateRange(block string, ents []types.Entity) string {
	if m := dateRangeRegex.FindStringSubmatch(block); m != nil {
		return m[1] + " - " + m[2]
	}
	var dates []string
	for _, e := range ents {
		if e.Label == types.LabelDate {
			dates = append(dates, strings.TrimSpace(e.Text))
		}
	}
	switch {
	case len(dates) >= 2:
		return dates[0] + " - " + dates[1]
	case len(dates) == 1:
		return dates[0]
	}
	return ""
}

// sameEntry 逐字段不区分大小写比较
func sameEntry(a, b types.ExperienceEntry) bool {
	return strings.EqualFold(a.JobTitle, b.JobTitle) &&
		strings.EqualFold(a.CompanyName, b.CompanyName) &&
		strings.EqualFold(a.DateRange, b.DateRange)
}

// tagTokens 把块文本切成词元并按覆盖它的实体打标签
// 字母数字连续段为一个词元，其余非空白字符各自成为单字符词元
func tagTokens(block string, ents []types.Entity) []taggedToken {
	var tokens []taggedToken
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tokens = append(tokens, newToken(block, start, end, ents))
		start = -1
	}
	for i, r := range block {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if start < 0 {
				start = i
			}
		case unicode.IsSpace(r):
			flush(i)
		default:
			flush(i)
			tokens = append(tokens, newToken(block, i, i+len(string(r)), ents))
		}
	}
	flush(len(block))
	return tokens
}

func newToken(block string, start, end int, ents []types.Entity) taggedToken {
	text := block[start:end]
	label := ""
	for _, e := range ents {
		if e.Start <= start && end <= e.End {
			label = e.Label
			break
		}
	}
	r, _ := utf8DecodeRune(text)
	return taggedToken{
		text:    text,
		lower:   strings.ToLower(text),
		start:   start,
		end:     end,
		label:   label,
		isPunct: unicode.IsPunct(r) || unicode.IsSymbol(r),
	}
}

func utf8DecodeRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}

// findRuleMatches 在词元序列上寻找规则的全部匹配窗口（按起点从左到右）
// 量词按贪婪策略消费，规则元素之间不回溯
func findRuleMatches(rule matchRule, tokens []taggedToken) []span {
	var windows []span
	for i := 0; i < len(tokens); i++ {
		if window, ok := matchAt(rule, tokens, i); ok {
			windows = append(windows, window)
		}
	}
	return windows
}

func matchAt(rule matchRule, tokens []taggedToken, at int) (span, bool) {
	pos := at
	for _, part := range rule.parts {
		switch part.op {
		case opOne:
			if pos >= len(tokens) || !part.match(tokens[pos]) {
				return span{}, false
			}
			pos++
		case opPlus:
			if pos >= len(tokens) || !part.match(tokens[pos]) {
				return span{}, false
			}
			for pos < len(tokens) && part.match(tokens[pos]) {
				pos++
			}
		case opOpt:
			if pos < len(tokens) && part.match(tokens[pos]) {
				pos++
			}
		}
	}
	return span{tokens[at].start, tokens[pos-1].end}, true
}

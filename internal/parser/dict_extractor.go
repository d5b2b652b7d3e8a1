package parser

import (
	"fmt"
	"regexp"
	"strings"

	"resume-nlp-go/internal/taxonomy"
)

// DictExtractor 基于词表和正则的抽取器，不依赖任何统计模型
// 词表只读，可被多个请求并发使用
type DictExtractor struct {
	tax *taxonomy.Store

	orgRegex       *regexp.Regexp
	emailRegex     *regexp.Regexp
	phoneRegex     *regexp.Regexp
	mobileRegex    *regexp.Regexp
	phoneCleanup   *regexp.Regexp
	nameLabelRegex *regexp.Regexp
	wordRegex      *regexp.Regexp
}

// NewDictExtractor 编译全部抽取正则
func NewDictExtractor(tax *taxonomy.Store) (*DictExtractor, error) {
	if len(tax.OrgSuffixes) == 0 {
		return nil, fmt.Errorf("组织后缀词表为空")
	}
	escaped := make([]string, len(tax.OrgSuffixes))
	for i, suffix := range tax.OrgSuffixes {
		escaped[i] = regexp.QuoteMeta(suffix)
	}
	// 每个词都以大写字母开头、整体以已知组织后缀结尾的短语，如 "Acme Technologies"
	// 小写连接词会打断短语，避免把 "Engineer at Acme Technologies" 整段吞进来
	orgRegex, err := regexp.Compile(`\b[A-Z][A-Za-z0-9&.,\-]*(?:\s+[A-Z][A-Za-z0-9&.,\-]*)*\s+(?:` + strings.Join(escaped, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("编译组织后缀正则失败: %w", err)
	}

	return &DictExtractor{
		tax:      tax,
		orgRegex: orgRegex,
		emailRegex: regexp.MustCompile(
			`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		// 宽松电话模式：可选国家码、可选括号区号、-或空格分隔
		phoneRegex: regexp.MustCompile(
			`(?:\+?\d{1,3}[\s-]?)?(?:\(?\d{3}\)?[\s-]?)?\d{3}[\s-]?\d{4}`),
		mobileRegex:    regexp.MustCompile(`(?i)Mobile[:\s]*(\d{10})`),
		phoneCleanup:   regexp.MustCompile(`[^\d+]`),
		nameLabelRegex: regexp.MustCompile(`(?i)^\s*name\s*[:\-]\s*(.+)$`),
		wordRegex:      regexp.MustCompile(`[A-Za-z]+`),
	}, nil
}

// containsWord 在归一化文本上做全词查找
// 关键词先做与文本相同的归一化，保证 "Spring Boot" 这类多词条目也能按词边界命中。
// 边界只看字母和数字：归一化保留的 + . # 与词相邻时（如句尾的 "postgres."）
// 不会挡住命中，而 "javascript" 里的 "java" 依然不算
func containsWord(norm string, keyword string) bool {
	k := strings.TrimSpace(taxonomy.Normalize(keyword))
	if k == "" {
		return false
	}
	from := 0
	for {
		idx := strings.Index(norm[from:], k)
		if idx < 0 {
			return false
		}
		start := from + idx
		if wordBoundary(norm, start, start+len(k)) {
			return true
		}
		from = start + 1
	}
}

// Skills 对技能词表与别名表做全词扫描，命中项做规范化后返回
// 收集完成后丢弃落在停用词表里的结果
func (d *DictExtractor) Skills(text string) map[string]struct{} {
	norm := taxonomy.Normalize(text)
	found := make(map[string]struct{})
	for _, keywords := range d.tax.Taxonomy {
		for _, kw := range keywords {
			if containsWord(norm, kw) {
				found[d.tax.CanonicalSkill(kw)] = struct{}{}
			}
		}
	}
	for alias, canonical := range d.tax.Aliases {
		if containsWord(norm, alias) {
			found[d.tax.CanonicalSkill(canonical)] = struct{}{}
		}
	}
	for skill := range found {
		if d.tax.IsSkillStopword(skill) {
			delete(found, skill)
		}
	}
	return found
}

// JobTitles 对固定职位词表做全词扫描
func (d *DictExtractor) JobTitles(text string) map[string]struct{} {
	norm := taxonomy.Normalize(text)
	found := make(map[string]struct{})
	for _, title := range d.tax.JobTitles {
		if containsWord(norm, title) {
			found[title] = struct{}{}
		}
	}
	return found
}

// Organizations 抽取以已知组织后缀结尾的大写开头短语
// 重叠候选的消歧规则：最左优先、不重叠（FindAllString 语义，
// 每次命中后从命中末尾继续扫描）
func (d *DictExtractor) Organizations(text string) map[string]struct{} {
	found := make(map[string]struct{})
	for _, m := range d.orgRegex.FindAllString(text, -1) {
		found[strings.TrimSpace(m)] = struct{}{}
	}
	return found
}

// Email 返回文本中第一个邮箱样式的匹配，未命中返回空串
func (d *DictExtractor) Email(text string) string {
	return d.emailRegex.FindString(text)
}

// TokenEmail 按空白切分后逐 token 判断邮箱形状，整个 token 必须是邮箱才算命中
// 比 Email 的子串匹配更严格，优先采用；两侧的标点会先剥掉
func (d *DictExtractor) TokenEmail(text string) string {
	for _, tok := range strings.Fields(text) {
		tok = strings.Trim(tok, ".,;:()<>[]\"'")
		if tok == "" {
			continue
		}
		if m := d.emailRegex.FindString(tok); m == tok {
			return tok
		}
	}
	return ""
}

// Phone 抽取电话号码：主模式未命中时回退到 "Mobile: 10位数字" 标签
// 输出保留开头的 +，其余非数字字符全部剥离
func (d *DictExtractor) Phone(text string) string {
	m := d.phoneRegex.FindString(text)
	if m == "" {
		if sub := d.mobileRegex.FindStringSubmatch(text); sub != nil {
			return sub[1]
		}
		return ""
	}
	return d.phoneCleanup.ReplaceAllString(m, "")
}

// NameFallback 只扫描前10行的姓名启发式
// 先找 "Name: X" / "Name - X" 标签行；再找首个含两个大写开头单词
// （每个单词长度3~20）的行，取前两个单词拼接。
// 简历习惯把姓名放在文档开头，因此刻意不看后续行。
func (d *DictExtractor) NameFallback(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		if sub := d.nameLabelRegex.FindStringSubmatch(strings.TrimSpace(line)); sub != nil {
			return strings.TrimSpace(sub[1])
		}
	}
	for _, line := range lines {
		words := d.wordRegex.FindAllString(line, -1)
		if len(words) < 2 {
			continue
		}
		if !isUpperStart(words[0]) || !isUpperStart(words[1]) {
			continue
		}
		if len(words[0]) >= 3 && len(words[0]) <= 20 && len(words[1]) >= 3 && len(words[1]) <= 20 {
			return words[0] + " " + words[1]
		}
	}
	return ""
}

func isUpperStart(word string) bool {
	return word != "" && word[0] >= 'A' && word[0] <= 'Z'
}

package parser

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-nlp-go/internal/types"
)

// rulerPattern 一条已编译的标注规则：短语（小写）-> 实体标签
type rulerPattern struct {
	label  string
	phrase string
}

// EntityRuler 外部模式文件驱动的补充标注器
// 以精确短语匹配产出 SKILL / JOB_TITLE / ORG 等标签，安装在统计识别器之前，
// 使规则命中优先于学习型预测
type EntityRuler struct {
	patterns []rulerPattern
}

// patternRecord 模式文件中的一行，pattern 可以是字符串，
// 也可以是 spaCy 风格的 token 列表
type patternRecord struct {
	Label   string          `json:"label"`
	Pattern json.RawMessage `json:"pattern"`
}

// NewEntityRulerFromDir 从目录加载全部JSONL模式文件
// 优先加载 skills.jsonl / titles.jsonl / orgs.jsonl，其余 *.jsonl 兜底
// （跳过文件名含 training 的训练语料）。任何失败都应由调用方按
// "功能停用"处理，而不是中断流程；单行格式错误只跳过该行。
func NewEntityRulerFromDir(dir string) (*EntityRuler, error) {
	if dir == "" {
		return nil, fmt.Errorf("未配置模式文件目录")
	}

	var files []string
	seen := make(map[string]bool)
	for _, name := range []string{"skills.jsonl", "titles.jsonl", "orgs.jsonl"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			files = append(files, p)
			seen[p] = true
		}
	}
	if extra, err := filepath.Glob(filepath.Join(dir, "*.jsonl")); err == nil {
		for _, p := range extra {
			if seen[p] || strings.Contains(strings.ToLower(filepath.Base(p)), "training") {
				continue
			}
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("目录 %s 下没有可用的模式文件", dir)
	}

	ruler := &EntityRuler{}
	for _, path := range files {
		// 单个文件损坏不致命，继续加载其余文件
		_ = ruler.loadFile(path)
	}
	if len(ruler.patterns) == 0 {
		return nil, fmt.Errorf("模式文件中没有解析出任何有效规则")
	}
	return ruler, nil
}

// loadFile 逐行读取一个JSONL文件，坏行跳过
func (r *EntityRuler) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec patternRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		phrase := decodePattern(rec.Pattern)
		if rec.Label == "" || phrase == "" {
			continue
		}
		r.patterns = append(r.patterns, rulerPattern{
			label:  rec.Label,
			phrase: strings.ToLower(phrase),
		})
	}
	return scanner.Err()
}

// decodePattern 把模式字段还原为短语
// 字符串直接使用；token 列表取每个 token 的 LOWER/TEXT/ORTH 值以空格拼接；
// 其余形状视为格式错误
func decodePattern(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var tokens []map[string]interface{}
	if err := json.Unmarshal(raw, &tokens); err == nil {
		var parts []string
		for _, tok := range tokens {
			for _, key := range []string{"LOWER", "TEXT", "ORTH"} {
				if v, ok := tok[key].(string); ok && v != "" {
					parts = append(parts, v)
					break
				}
			}
		}
		return strings.TrimSpace(strings.Join(parts, " "))
	}
	return ""
}

// PatternCount 已加载的规则条数
func (r *EntityRuler) PatternCount() int {
	return len(r.patterns)
}

// Tag 在文本中做不区分大小写的全词短语匹配
func (r *EntityRuler) Tag(ctx context.Context, text string) ([]types.Entity, error) {
	lowered := strings.ToLower(text)
	var ents []types.Entity
	for _, p := range r.patterns {
		from := 0
		for {
			idx := strings.Index(lowered[from:], p.phrase)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(p.phrase)
			if wordBoundary(lowered, start, end) {
				ents = append(ents, types.Entity{
					Text:  text[start:end],
					Label: p.label,
					Start: start,
					End:   end,
				})
			}
			from = end
		}
	}
	return ents, nil
}

// wordBoundary 检查 [start,end) 两侧都不紧贴字母或数字
func wordBoundary(s string, start, end int) bool {
	if start > 0 && isAlnum(s[start-1]) {
		return false
	}
	if end < len(s) && isAlnum(s[end]) {
		return false
	}
	return true
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// InstallRuler 把规则标注器安装到识别链的最前端
// 幂等：链上已有规则标注器时重复安装是空操作；
// 规则器为空时原样返回基础识别器（功能停用状态）
func InstallRuler(base Recognizer, ruler *EntityRuler) Recognizer {
	if ruler == nil || len(ruler.patterns) == 0 {
		return base
	}
	if chain, ok := base.(*ChainRecognizer); ok {
		if _, installed := chain.primary.(*EntityRuler); installed {
			return base
		}
	}
	return NewChainRecognizer(ruler, base)
}

package parser

import (
	"sort"
	"strings"
)

// MergeSets 合并多个抽取器的输出：
// 取并集、去除首尾空白、按修剪后的精确值去重，
// 再按不区分大小写的字典序排序，保证输出字节级稳定
func MergeSets(sets ...map[string]struct{}) []string {
	merged := make(map[string]struct{})
	for _, set := range sets {
		for item := range set {
			trimmed := strings.TrimSpace(item)
			if trimmed == "" {
				continue
			}
			merged[trimmed] = struct{}{}
		}
	}

	out := make([]string, 0, len(merged))
	for item := range merged {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		// 大小写键相同时按原文排序，避免依赖map遍历顺序
		return out[i] < out[j]
	})
	return out
}

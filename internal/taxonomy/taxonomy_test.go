package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalize 验证归一化保留技术符号并压缩其他字符
func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"小写化与空白压缩", "Java,  Python!", " java python "},
		{"保留加号井号点号", "C++ / C# / .NET", " c++ c# .net "},
		{"混合符号", "Node.js & React", " node.js react "},
		{"空串", "", "  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.input))
		})
	}
}

// TestCanonicalSkill 验证表面形式到规范拼写的归一
func TestCanonicalSkill(t *testing.T) {
	s := NewDefaultStore()

	cases := map[string]string{
		"js":         "JavaScript",
		"nodejs":     "Node.js",
		"Node":       "Node.js",
		"react.js":   "React",
		"postgres":   "PostgreSQL",
		"aws":        "AWS",
		"gcp":        "Google Cloud",
		"c++":        "c++",
		".NET":       ".NET",
		"python":     "Python",
		"kubernetes": "Kubernetes",
		"":           "",
		"  ":         "",
	}

	for input, want := range cases {
		assert.Equal(t, want, s.CanonicalSkill(input), "input=%q", input)
	}
}

// TestCanonicalSkillIdempotent 规范化结果再次规范化应保持不变
func TestCanonicalSkillIdempotent(t *testing.T) {
	s := NewDefaultStore()

	inputs := []string{"js", "node", "gcp", "postgres", "python", "c++", ".NET", "ms sql", "Machine Learning"}
	for _, input := range inputs {
		once := s.CanonicalSkill(input)
		twice := s.CanonicalSkill(once)
		assert.Equal(t, once, twice, "input=%q", input)
	}
}

// TestIsSkillStopword 资历词不允许进入技能结果
func TestIsSkillStopword(t *testing.T) {
	s := NewDefaultStore()

	assert.True(t, s.IsSkillStopword("senior"))
	assert.True(t, s.IsSkillStopword("Senior"))
	assert.True(t, s.IsSkillStopword("LEAD"))
	assert.False(t, s.IsSkillStopword("python"))
}

// TestLoadOverlay 覆盖文件对词表做增量合并
func TestLoadOverlay(t *testing.T) {
	overlayYAML := `
aliases:
  "golang": "Go"
skills:
  "Programming Languages":
    - "Zig"
job_titles:
  - "Platform Engineer"
org_suffixes:
  - "GmbH"
stopwords:
  - "Expert"
`
	tmpDir, err := os.MkdirTemp("", "taxonomy-overlay")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overlayYAML), 0644))

	s := NewDefaultStore()
	require.NoError(t, s.LoadOverlay(path))

	assert.Equal(t, "Go", s.CanonicalSkill("golang"))
	assert.Contains(t, s.Taxonomy["Programming Languages"], "Zig")
	assert.Contains(t, s.JobTitles, "Platform Engineer")
	assert.Contains(t, s.OrgSuffixes, "GmbH")
	assert.True(t, s.IsSkillStopword("expert"))
}

// TestLoadOverlayMissingFile 覆盖文件缺失不视为错误
func TestLoadOverlayMissingFile(t *testing.T) {
	s := NewDefaultStore()
	assert.NoError(t, s.LoadOverlay("/nonexistent/overlay.yaml"))
	assert.NoError(t, s.LoadOverlay(""))
}

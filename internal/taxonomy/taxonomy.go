package taxonomy

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"resume-nlp-go/internal/types"
)

// Store 技能/职位/组织词表的只读配置对象
// 进程启动时构建一次，之后显式传入各抽取器；请求期间不可变，
// 运营人员可通过覆盖文件在两次请求之间扩充词表（需重启生效）
type Store struct {
	// Aliases 表面形式(小写) -> 规范技能名，多对一
	Aliases map[string]string

	// Taxonomy 分类 -> 规范技能名集合
	Taxonomy map[string][]string

	// JobTitles 固定职位词表
	JobTitles []string

	// OrgSuffixes 组织后缀词表（Inc、LLC、Technologies 等）
	OrgSuffixes []string

	// SkillStopwords 不允许出现在技能结果中的词（小写）
	SkillStopwords map[string]struct{}

	// SectionSynonyms 规范章节键 -> 标题同义词集合
	SectionSynonyms map[types.SectionType][]string
}

// NewDefaultStore 构建内置默认词表
func NewDefaultStore() *Store {
	s := &Store{
		Aliases: map[string]string{
			"js":         "JavaScript",
			"ts":         "TypeScript",
			"py":         "Python",
			"nodejs":     "Node.js",
			"reactjs":    "React",
			"react.js":   "React",
			"node":       "Node.js",
			"postgres":   "PostgreSQL",
			"aws":        "AWS",
			"gcp":        "Google Cloud",
			"ms sql":     "SQL Server",
			"sql server": "SQL Server",
			"k8s":        "Kubernetes",
		},
		Taxonomy: map[string][]string{
			"Programming Languages": {
				"Java", "Python", "JavaScript", "TypeScript", "C++", "C#", "Go", "Ruby", "PHP", "Rust", "Kotlin", "Swift", "Scala",
			},
			"Frameworks & Libraries": {
				"Spring Boot", "Spring", "React", "Angular", "Vue", "Django", "Flask", "Express", "FastAPI", "Hibernate", ".NET", "Rails", "Laravel", "GraphQL",
			},
			"Databases": {
				"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "SQLite", "Oracle", "SQL Server", "Cassandra", "DynamoDB",
			},
			"Cloud & DevOps": {
				"AWS", "Azure", "Google Cloud", "GCP", "Docker", "Kubernetes", "Terraform", "Jenkins", "GitHub Actions", "Ansible", "Prometheus", "Helm",
			},
			"Data Science": {
				"TensorFlow", "PyTorch", "scikit-learn", "NumPy", "Pandas", "Machine Learning", "Deep Learning", "NLP", "Computer Vision",
			},
			"Tools": {
				"Git", "Maven", "Gradle", "Jira", "Linux", "Nginx", "Kafka", "RabbitMQ",
			},
			"Soft Skills": {
				"Leadership", "Communication", "Problem Solving", "Project Management", "Mentoring", "Agile", "Scrum",
			},
		},
		JobTitles: []string{
			"Software Engineer", "Senior Software Engineer", "Backend Developer", "Frontend Developer",
			"Full Stack Developer", "Data Scientist", "Machine Learning Engineer", "DevOps Engineer",
			"SRE", "QA Engineer", "Android Developer", "iOS Developer",
		},
		OrgSuffixes: []string{
			"Inc", "Ltd", "LLC", "Pvt", "Technologies", "Labs", "Systems", "Solutions", "Corp", "Company",
		},
		SkillStopwords: map[string]struct{}{
			"intern": {}, "junior": {}, "senior": {}, "fresher": {},
			"trainee": {}, "lead": {}, "manager": {}, "associate": {},
		},
		SectionSynonyms: map[types.SectionType][]string{
			types.SectionExperience: {
				"experience", "work experience", "professional experience", "employment history",
				"career history", "work history", "employment", "work profile",
			},
			types.SectionEducation: {
				"education", "educational background", "academic background", "qualifications", "academics",
			},
			types.SectionProjects: {
				"projects", "project experience", "personal projects", "academic projects",
			},
			types.SectionSkills: {
				"skills", "technical skills", "skills & tools", "skills and tools", "technologies",
				"tech stack", "core competencies", "key skills",
			},
			types.SectionCertifications: {
				"certifications", "certificates", "licenses", "licences",
			},
			types.SectionSummary: {
				"summary", "professional summary", "profile", "about me", "objective",
			},
		},
	}
	return s
}

// Overlay 运营覆盖文件的结构，所有字段均为增量合并
type Overlay struct {
	Aliases     map[string]string   `yaml:"aliases"`
	Skills      map[string][]string `yaml:"skills"`
	JobTitles   []string            `yaml:"job_titles"`
	OrgSuffixes []string            `yaml:"org_suffixes"`
	Stopwords   []string            `yaml:"stopwords"`
}

// LoadOverlay 从YAML文件加载词表增量并合并进Store
// 文件不存在不视为错误（覆盖文件是可选的）
func (s *Store) LoadOverlay(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("读取词表覆盖文件失败: %w", err)
	}

	var ov Overlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("解析词表覆盖文件失败: %w", err)
	}

	for alias, canon := range ov.Aliases {
		s.Aliases[strings.ToLower(alias)] = canon
	}
	for category, names := range ov.Skills {
		s.Taxonomy[category] = append(s.Taxonomy[category], names...)
	}
	s.JobTitles = append(s.JobTitles, ov.JobTitles...)
	s.OrgSuffixes = append(s.OrgSuffixes, ov.OrgSuffixes...)
	for _, w := range ov.Stopwords {
		s.SkillStopwords[strings.ToLower(w)] = struct{}{}
	}
	return nil
}

// IsSkillStopword 技能结果过滤：senior、lead 这类词即使被通用匹配命中也不算技能
func (s *Store) IsSkillStopword(word string) bool {
	_, ok := s.SkillStopwords[strings.ToLower(word)]
	return ok
}

// nonWordRunes 匹配归一化时需要替换为空格的字符段
// 保留 + . # 以免破坏 c++ / .net / node.js 这类技术词
var nonWordRunes = regexp.MustCompile(`[^a-z0-9+.#]+`)

// Normalize 将文本小写化并把所有非 [a-z0-9+.#] 字符段压成单个空格，
// 首尾各补一个空格，使 " kw " 形式的子串查找等价于全词匹配
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	collapsed := nonWordRunes.ReplaceAllString(lowered, " ")
	return " " + strings.TrimSpace(collapsed) + " "
}

// CanonicalSkill 将技能的表面形式归一到唯一的规范拼写
// 该函数是全函数（永不失败）且幂等：CanonicalSkill(CanonicalSkill(x)) == CanonicalSkill(x)
func (s *Store) CanonicalSkill(token string) string {
	t := strings.TrimSpace(token)
	if t == "" {
		return ""
	}
	key := strings.ToLower(t)
	if canon, ok := s.Aliases[key]; ok {
		return canon
	}
	// 常见不规则变体
	switch key {
	case "node", "nodejs":
		return "Node.js"
	case "reactjs", "react.js":
		return "React"
	case "postgres":
		return "PostgreSQL"
	}
	// 已知缩写统一大写
	upper := strings.ToUpper(t)
	if upper == "AWS" || upper == "GCP" {
		return upper
	}
	// 含符号的技术词保留原样
	if key == "c++" || key == "c#" || key == ".net" {
		return t
	}
	// 其余只把首字母大写
	return strings.ToUpper(t[:1]) + t[1:]
}

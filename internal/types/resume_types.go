package types

// SectionType 表示简历章节的规范键
type SectionType string

const (
	// SectionExperience 工作经历章节
	SectionExperience SectionType = "experience"
	// SectionEducation 教育经历章节
	SectionEducation SectionType = "education"
	// SectionProjects 项目经历章节
	SectionProjects SectionType = "projects"
	// SectionSkills 技能章节
	SectionSkills SectionType = "skills"
	// SectionCertifications 证书章节
	SectionCertifications SectionType = "certifications"
	// SectionSummary 个人总结章节；未识别到任何标题时整份文本归入此章节
	SectionSummary SectionType = "summary"
)

// SectionMap 规范章节键 -> 章节正文
// 同一规范章节出现多个标题变体时，内容按文档顺序以空行拼接
type SectionMap map[SectionType]string

// 实体标签，与识别引擎的能力契约保持一致
const (
	LabelPerson       = "PERSON"
	LabelDate         = "DATE"
	LabelSkill        = "SKILL"
	LabelJobTitle     = "JOB_TITLE"
	LabelOrg          = "ORG"
	LabelOrganization = "ORGANIZATION"
)

// Entity 表示识别引擎标注出的一个实体片段
type Entity struct {
	Text  string // 片段原文
	Label string // 实体标签，如 PERSON / DATE / SKILL / JOB_TITLE / ORG
	Start int    // 在输入文本中的起始字节偏移
	End   int    // 结束字节偏移（开区间）
}

// IsOrg 判断标签是否为组织类（ORG 与 ORGANIZATION 等价）
func (e Entity) IsOrg() bool {
	return e.Label == LabelOrg || e.Label == LabelOrganization
}

// ExperienceEntry 一条结构化的工作经历
// 三个字段至少有一个非空时才会被保留
type ExperienceEntry struct {
	JobTitle    string `json:"jobTitle"`
	CompanyName string `json:"companyName"`
	DateRange   string `json:"dateRange"`
}

// AllEmpty 三个字段是否全部为空
func (e ExperienceEntry) AllEmpty() bool {
	return e.JobTitle == "" && e.CompanyName == "" && e.DateRange == ""
}

// ExtractionResult 单次解析请求的完整抽取结果
// skills/jobTitles/organizations 为去重后的集合，输出前已按不区分大小写的字典序排序；
// experiences 保留文档顺序
type ExtractionResult struct {
	FullName      string
	Email         string
	PhoneNumber   string
	Skills        []string
	JobTitles     []string
	Organizations []string
	Experiences   []ExperienceEntry
}

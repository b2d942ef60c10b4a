package taxonomy

// DefaultSkills 内置的规范技能列表
// 后五项是别名表的目标，保证每个别名都能解析到规范名
var DefaultSkills = []string{
	"Python", "Java", "c++", "SQL", "Machine Learning", "Data Analysis",
	"Communication", "Leadership", "Problem-Solving", "DevOps",
	"Artificial Intelligence", "Natural Language Processing", "Database", "C#", "JavaScript",
}

// DefaultAliases 内置的别名/缩写映射
var DefaultAliases = map[string]string{
	"ML":         "Machine Learning",
	"AI":         "Artificial Intelligence",
	"NLP":        "Natural Language Processing",
	"DB":         "Database",
	"SQL Server": "SQL",
	"C-sharp":    "C#",
	"JS":         "JavaScript",
}

// Default 返回内置分类表
func Default() *Taxonomy {
	t, err := New(DefaultSkills, DefaultAliases)
	if err != nil {
		// 内置数据在测试中已校验，这里出错说明代码被改坏了
		panic(err)
	}
	return t
}

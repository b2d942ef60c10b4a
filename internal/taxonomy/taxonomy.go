// Package taxonomy 维护规范技能名称及其别名/缩写映射。
// Taxonomy 构造后只读，可在多个 goroutine 之间共享。
package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptyCanonical 规范技能名为空
	ErrEmptyCanonical = errors.New("canonical skill name is empty")
	// ErrDuplicateCanonical 规范技能名重复
	ErrDuplicateCanonical = errors.New("duplicate canonical skill")
	// ErrUnresolvableAlias 别名指向的目标既不是规范技能也不是可解析的别名
	ErrUnresolvableAlias = errors.New("alias target is not resolvable")
	// ErrAliasCycle 别名之间存在循环引用
	ErrAliasCycle = errors.New("alias cycle detected")
	// ErrConflictingAlias 同一别名被映射到多个规范名
	ErrConflictingAlias = errors.New("alias maps to more than one canonical skill")
)

// Taxonomy 技能分类表：有序的规范技能列表 + 别名到规范名的映射
type Taxonomy struct {
	canonical []string
	lower     []string          // 与 canonical 一一对应的小写形式
	index     map[string]int    // 规范名 -> 定义顺序（区分大小写）
	aliases   map[string]string // 别名 -> 最终解析出的规范名
}

// Entry 用于从文件构建分类表的一条记录
type Entry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// New 根据规范技能列表和别名映射创建分类表
// 别名的目标可以是规范名，也可以是另一个别名（链式解析），但不能成环
func New(canonical []string, aliases map[string]string) (*Taxonomy, error) {
	t := &Taxonomy{
		canonical: make([]string, 0, len(canonical)),
		lower:     make([]string, 0, len(canonical)),
		index:     make(map[string]int, len(canonical)),
		aliases:   make(map[string]string, len(aliases)),
	}

	for _, name := range canonical {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrEmptyCanonical
		}
		if _, exists := t.index[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCanonical, name)
		}
		t.index[name] = len(t.canonical)
		t.canonical = append(t.canonical, name)
		t.lower = append(t.lower, strings.ToLower(name))
	}

	for alias := range aliases {
		resolved, err := resolveChain(alias, aliases, t.index)
		if err != nil {
			return nil, err
		}
		// 与规范名同名的别名只能指向自己
		if _, isCanonical := t.index[alias]; isCanonical && resolved != alias {
			return nil, fmt.Errorf("%w: %q is canonical but aliased to %q", ErrConflictingAlias, alias, resolved)
		}
		t.aliases[alias] = resolved
	}

	return t, nil
}

// resolveChain 沿着别名链解析到规范名
func resolveChain(alias string, aliases map[string]string, canonical map[string]int) (string, error) {
	seen := map[string]struct{}{alias: {}}
	current := aliases[alias]
	for {
		if _, ok := canonical[current]; ok {
			return current, nil
		}
		next, ok := aliases[current]
		if !ok {
			return "", fmt.Errorf("%w: %q -> %q", ErrUnresolvableAlias, alias, current)
		}
		if _, looped := seen[current]; looped {
			return "", fmt.Errorf("%w: %q", ErrAliasCycle, alias)
		}
		seen[current] = struct{}{}
		current = next
	}
}

// FromEntries 从条目列表创建分类表，每个条目的别名都指向该条目的规范名
func FromEntries(entries []Entry) (*Taxonomy, error) {
	canonical := make([]string, 0, len(entries))
	aliases := make(map[string]string)
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		canonical = append(canonical, name)
		for _, a := range e.Aliases {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			if prev, exists := aliases[a]; exists && prev != name {
				return nil, fmt.Errorf("%w: %q (%q, %q)", ErrConflictingAlias, a, prev, name)
			}
			aliases[a] = name
		}
	}
	return New(canonical, aliases)
}

// Canonical 返回规范技能列表的副本（保持定义顺序）
func (t *Taxonomy) Canonical() []string {
	out := make([]string, len(t.canonical))
	copy(out, t.canonical)
	return out
}

// Len 规范技能数量
func (t *Taxonomy) Len() int {
	return len(t.canonical)
}

// IsCanonical 判断 name 是否为规范技能名（区分大小写）
func (t *Taxonomy) IsCanonical(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Resolve 将规范名或别名解析为规范名（区分大小写）
func (t *Taxonomy) Resolve(term string) (string, bool) {
	if _, ok := t.index[term]; ok {
		return term, true
	}
	canonical, ok := t.aliases[term]
	return canonical, ok
}

// Aliases 返回别名映射的副本，值为最终解析出的规范名
func (t *Taxonomy) Aliases() map[string]string {
	out := make(map[string]string, len(t.aliases))
	for k, v := range t.aliases {
		out[k] = v
	}
	return out
}

// Each 按定义顺序遍历规范名及其小写形式
func (t *Taxonomy) Each(fn func(canonical, lower string)) {
	for i, name := range t.canonical {
		fn(name, t.lower[i])
	}
}

// Order 返回规范名在分类表中的位置，不存在时返回 -1
func (t *Taxonomy) Order(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Entries 将分类表转换回条目列表，用于导出示例文件
func (t *Taxonomy) Entries() []Entry {
	byCanonical := make(map[string][]string)
	for alias, canonical := range t.aliases {
		byCanonical[canonical] = append(byCanonical[canonical], alias)
	}
	entries := make([]Entry, 0, len(t.canonical))
	for _, name := range t.canonical {
		aliases := byCanonical[name]
		sort.Strings(aliases)
		entries = append(entries, Entry{Name: name, Aliases: aliases})
	}
	return entries
}

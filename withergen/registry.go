package withergen

import (
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/donutnomad/recordgen/internal/utils"
)

// 内置变体名称
const (
	VariantRecord = "record"
	VariantKeyed  = "keyed"
	VariantField  = "field"
	VariantStrict = "strict"
)

// DefaultVariant 默认变体
const DefaultVariant = VariantRecord

// Registry 变体注册表
type Registry struct {
	mu       sync.RWMutex
	variants map[string]Variant
}

// NewRegistry 创建空的注册表
func NewRegistry() *Registry {
	return &Registry{
		variants: make(map[string]Variant),
	}
}

// Register 注册变体，名称重复或配置非法时返回错误
func (r *Registry) Register(v Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(strings.TrimSpace(v.Name))
	if name == "" {
		return errors.New("变体名称不能为空")
	}
	if _, ok := r.variants[name]; ok {
		return errors.Newf("变体 %q 已注册", name)
	}
	if err := v.Validate(); err != nil {
		return errors.Wrapf(err, "变体 %q", name)
	}

	v.Name = name
	v.Reserved = slices.Clone(v.Reserved)
	r.variants[name] = v
	return nil
}

// MustRegister 注册变体，失败时 panic
func (r *Registry) MustRegister(v Variant) {
	if err := r.Register(v); err != nil {
		panic(err)
	}
}

// Get 按名称获取变体（不区分大小写）
func (r *Registry) Get(name string) (Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.variants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Variant{}, errors.WithHintf(
			errors.Wrapf(ErrUnknownVariant, "%q", name),
			"可选变体: %s", strings.Join(r.namesLocked(), ", "),
		)
	}
	v.Reserved = slices.Clone(v.Reserved)
	return v, nil
}

// Names 返回排序后的变体名称
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Variants 返回按名称排序的所有变体
func (r *Registry) Variants() []Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Variant, 0, len(r.variants))
	for _, name := range r.namesLocked() {
		result = append(result, r.variants[name])
	}
	return result
}

// 全局注册表
var globalRegistry = NewRegistry()

func init() {
	globalRegistry.MustRegister(Variant{
		Name:        VariantRecord,
		Description: "[Key(n)] 或 [Field] 标记，值未变化时返回 this",
		Marker:      MarkerAny,
		Policy:      PolicyGuarded,
		Reserved:    []string{"delegate"},
	})
	globalRegistry.MustRegister(Variant{
		Name:        VariantKeyed,
		Description: "仅 [Key(n)] 标记，值未变化时返回 this",
		Marker:      MarkerKey,
		Policy:      PolicyGuarded,
		Reserved:    []string{"delegate"},
	})
	globalRegistry.MustRegister(Variant{
		Name:        VariantField,
		Description: "仅 [Field] 标记，总是构造新实例",
		Marker:      MarkerField,
		Policy:      PolicyUnconditional,
	})
	globalRegistry.MustRegister(Variant{
		Name:        VariantStrict,
		Description: "同 record，参数名与任何 C# 关键字冲突时都加 @",
		Marker:      MarkerAny,
		Policy:      PolicyGuarded,
		Reserved:    utils.CSharpKeywords,
	})
}

// Global 返回全局注册表
func Global() *Registry {
	return globalRegistry
}

// Lookup 从全局注册表获取变体
func Lookup(name string) (Variant, error) {
	return globalRegistry.Get(name)
}

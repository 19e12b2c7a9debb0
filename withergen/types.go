package withergen

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// PropertyDescriptor 表示一个被标记的只读属性
type PropertyDescriptor struct {
	Type string // 原始类型文本，如 "ImmutableList<int>"、"string?"
	Name string // 属性名，如 "ConnectionIndices"
}

// ClassDescriptor 表示扫描到的一个 partial class
// Properties 的顺序即源码中的声明顺序，同时也是主构造函数的参数顺序
type ClassDescriptor struct {
	Name       string
	Properties []PropertyDescriptor

	// File 来源文件路径，由调用方填充，扫描器不设置
	File string
}

// PropertyNames 返回所有属性名（按声明顺序）
func (c *ClassDescriptor) PropertyNames() []string {
	return lo.Map(c.Properties, func(p PropertyDescriptor, _ int) string {
		return p.Name
	})
}

// Marker 属性标记的语法
type Marker string

const (
	MarkerKey   Marker = "key"   // [Key(0)] public T Name { get; }
	MarkerField Marker = "field" // [Field] public T Name { get; }
	MarkerAny   Marker = "any"   // 以上两种都接受
)

// Policy wither 方法的生成策略
type Policy string

const (
	// PolicyGuarded 值未变化时直接返回 this
	PolicyGuarded Policy = "guarded"
	// PolicyUnconditional 总是构造新实例
	PolicyUnconditional Policy = "unconditional"
)

var (
	ErrUnknownVariant = errors.New("未知的生成变体")
	ErrUnknownMarker  = errors.New("未知的属性标记")
	ErrUnknownPolicy  = errors.New("未知的生成策略")
)

// Variant 一次生成所使用的完整配置
// 扫描器只看 Marker，生成器只看 Policy / Reserved / EscapePrefix
type Variant struct {
	Name         string
	Description  string
	Marker       Marker
	Policy       Policy
	Reserved     []string // 需要转义的保留字（已是小写形式）
	EscapePrefix string   // 为空时使用 @
}

// Validate 检查标记和策略是否合法
func (v Variant) Validate() error {
	switch v.Marker {
	case MarkerKey, MarkerField, MarkerAny:
	default:
		return errors.Wrapf(ErrUnknownMarker, "%q (可选值: key|field|any)", v.Marker)
	}
	switch v.Policy {
	case PolicyGuarded, PolicyUnconditional:
	default:
		return errors.Wrapf(ErrUnknownPolicy, "%q (可选值: guarded|unconditional)", v.Policy)
	}
	return nil
}

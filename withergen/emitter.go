package withergen

import (
	"strings"

	"github.com/donutnomad/recordgen/internal/utils"
)

const (
	classIndent  = "  "
	memberIndent = "    "
	bodyIndent   = "      "
	ternIndent   = "        "
	argIndent    = "          "
)

// Emitter wither 方法生成器
// 为每个属性生成一个 WithXxx 方法，方法体调用主构造函数
type Emitter struct {
	policy  Policy
	escaper *utils.Escaper
}

// NewEmitter 根据变体创建生成器
func NewEmitter(v Variant) (*Emitter, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &Emitter{
		policy:  v.Policy,
		escaper: utils.NewEscaper(v.EscapePrefix, v.Reserved...),
	}, nil
}

// MustNewEmitter 是 NewEmitter 的 panic 版本
func MustNewEmitter(v Variant) *Emitter {
	e, err := NewEmitter(v)
	if err != nil {
		panic(err)
	}
	return e
}

// ParamName 返回属性对应的参数名
func (e *Emitter) ParamName(propertyName string) string {
	return e.escaper.ParamName(propertyName)
}

// Emit 生成一个 class 的扩展代码块
// 没有属性的 class 会生成空的类体
//
// 生成示例（guarded）:
//
//	  public sealed partial class Widget
//	  {
//	    public Widget WithSize(int size) =>
//	      Equals(size, Size)
//	        ? this
//	        : new Widget(
//	          size,
//	          Name);
//	  }
func (e *Emitter) Emit(class *ClassDescriptor) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(classIndent + "public sealed partial class " + class.Name + "\n")
	sb.WriteString(classIndent + "{\n")

	for _, prop := range class.Properties {
		e.emitWither(&sb, class, prop)
	}

	sb.WriteString(classIndent + "}\n")
	return sb.String()
}

// EmitAll 依次生成所有 class 的代码块
func (e *Emitter) EmitAll(classes []*ClassDescriptor) []string {
	blocks := make([]string, 0, len(classes))
	for _, c := range classes {
		blocks = append(blocks, e.Emit(c))
	}
	return blocks
}

// emitWither 生成单个 WithXxx 方法
func (e *Emitter) emitWither(sb *strings.Builder, class *ClassDescriptor, prop PropertyDescriptor) {
	param := e.ParamName(prop.Name)

	sb.WriteString(memberIndent + "public " + class.Name + " With" + prop.Name + "(" + prop.Type + " " + param + ") =>\n")

	switch e.policy {
	case PolicyGuarded:
		sb.WriteString(bodyIndent + "Equals(" + param + ", " + prop.Name + ")\n")
		sb.WriteString(ternIndent + "? this\n")
		sb.WriteString(ternIndent + ": new " + class.Name + "(\n")
	default:
		sb.WriteString(bodyIndent + "new " + class.Name + "(\n")
	}

	args := make([]string, 0, len(class.Properties))
	for _, p := range class.Properties {
		if p.Name == prop.Name {
			args = append(args, argIndent+param)
		} else {
			args = append(args, argIndent+p.Name)
		}
	}
	sb.WriteString(strings.Join(args, ",\n"))
	sb.WriteString(");\n\n")
}

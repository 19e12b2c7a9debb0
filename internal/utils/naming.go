package utils

import (
	"slices"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// CSharpKeywords C# 保留关键字列表
// 参数名与其中任何一个冲突时都必须使用 @ 前缀转义
var CSharpKeywords = []string{
	"abstract", "as", "base", "bool", "break", "byte", "case", "catch", "char",
	"checked", "class", "const", "continue", "decimal", "default", "delegate",
	"do", "double", "else", "enum", "event", "explicit", "extern", "false",
	"finally", "fixed", "float", "for", "foreach", "goto", "if", "implicit",
	"in", "int", "interface", "internal", "is", "lock", "long", "namespace",
	"new", "null", "object", "operator", "out", "override", "params", "private",
	"protected", "public", "readonly", "ref", "return", "sbyte", "sealed",
	"short", "sizeof", "stackalloc", "static", "string", "struct", "switch",
	"this", "throw", "true", "try", "typeof", "uint", "ulong", "unchecked",
	"unsafe", "ushort", "using", "virtual", "void", "volatile", "while",
}

// DefaultEscapePrefix C# 的逐字标识符前缀
const DefaultEscapePrefix = "@"

// LowerFirst 将首字母转换为小写，其余部分保持不变
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// Escaper 保留字转义器
// 命中保留字列表的标识符会被加上前缀（C# 中为 @）
type Escaper struct {
	prefix   string
	reserved map[string]struct{}
}

// NewEscaper 创建转义器，prefix 为空时使用 @
func NewEscaper(prefix string, reserved ...string) *Escaper {
	if prefix == "" {
		prefix = DefaultEscapePrefix
	}
	words := lo.Filter(reserved, func(w string, _ int) bool {
		return strings.TrimSpace(w) != ""
	})
	return &Escaper{
		prefix: prefix,
		reserved: lo.SliceToMap(words, func(w string) (string, struct{}) {
			return strings.TrimSpace(w), struct{}{}
		}),
	}
}

// IsReserved 检查是否是保留字
func (e *Escaper) IsReserved(s string) bool {
	if e == nil {
		return false
	}
	_, ok := e.reserved[s]
	return ok
}

// Escape 如果 s 是保留字则加上前缀
func (e *Escaper) Escape(s string) string {
	if e.IsReserved(s) {
		return e.prefix + s
	}
	return s
}

// ParamName 由属性名生成安全的参数名：首字母小写，再做保留字转义
func (e *Escaper) ParamName(name string) string {
	return e.Escape(LowerFirst(name))
}

// Reserved 返回排序后的保留字列表
func (e *Escaper) Reserved() []string {
	if e == nil {
		return nil
	}
	words := lo.Keys(e.reserved)
	slices.Sort(words)
	return words
}

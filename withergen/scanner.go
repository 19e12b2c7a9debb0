package withergen

import (
	"io"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// ident C# 标识符，允许任意 Unicode 字母和数字
const ident = `([\p{L}\p{N}_]+)`

// classRegex 匹配 public sealed partial class Name
var classRegex = regexp.MustCompile(`public sealed partial class ` + ident)

// markerPatterns 各标记语法对应的正则前缀
var markerPatterns = map[Marker]string{
	MarkerKey:   `\[Key\(\d+\)\]`,
	MarkerField: `\[Field\]`,
	MarkerAny:   `\[(?:Key\(\d+\)|Field)\]`,
}

// propertySuffix 匹配 public [override ]Type Name { get; }
// 类型部分非贪婪，属性名为最后一个单词
const propertySuffix = ` public (?:override )?(.*?) ` + ident + ` \{ get; \}`

// Scanner 声明扫描器
// 逐行匹配 class 声明和属性声明，不构建语法树
type Scanner struct {
	marker        Marker
	propertyRegex *regexp.Regexp
}

// NewScanner 创建使用指定标记语法的扫描器
func NewScanner(marker Marker) (*Scanner, error) {
	prefix, ok := markerPatterns[marker]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMarker, "%q", marker)
	}
	return &Scanner{
		marker:        marker,
		propertyRegex: regexp.MustCompile(prefix + propertySuffix),
	}, nil
}

// MustNewScanner 是 NewScanner 的 panic 版本
func MustNewScanner(marker Marker) *Scanner {
	s, err := NewScanner(marker)
	if err != nil {
		panic(err)
	}
	return s
}

// Marker 返回扫描器使用的标记语法
func (s *Scanner) Marker() Marker {
	return s.marker
}

// Scan 读取全部文本并扫描，只有读取失败才返回错误
func (s *Scanner) Scan(r io.Reader) ([]*ClassDescriptor, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "读取源文件失败")
	}
	return s.ScanString(string(content)), nil
}

// ScanString 扫描一段已在内存中的文本，行长度不受限制
func (s *Scanner) ScanString(text string) []*ClassDescriptor {
	return s.ScanLines(strings.Split(text, "\n"))
}

// ScanLines 单次前向扫描
//  1. 遇到 class 声明：先收尾上一个 class，再开始新 class
//  2. 同一行也会尝试匹配属性（两个模式互不排斥）
//  3. class 之前出现的属性直接丢弃
//  4. 输入结束时收尾当前 class，无论是否有属性
func (s *Scanner) ScanLines(lines []string) []*ClassDescriptor {
	var (
		result  []*ClassDescriptor
		current *ClassDescriptor
	)

	for _, line := range lines {
		if m := classRegex.FindStringSubmatch(line); m != nil {
			if current != nil {
				result = append(result, current)
			}
			current = &ClassDescriptor{Name: m[1], Properties: []PropertyDescriptor{}}
		}

		if m := s.propertyRegex.FindStringSubmatch(line); m != nil {
			if current == nil {
				continue
			}
			current.Properties = append(current.Properties, PropertyDescriptor{
				Type: m[1],
				Name: m[2],
			})
		}
	}

	if current != nil {
		result = append(result, current)
	}

	return result
}

// QuickMatch 快速判断文本中是否可能存在 class 声明
// 用于在完整扫描之前过滤文件
func QuickMatch(text string) bool {
	return strings.Contains(text, "partial class")
}

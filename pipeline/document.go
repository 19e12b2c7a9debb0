package pipeline

import (
	"bytes"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"

	"github.com/donutnomad/recordgen/withergen"
)

// Document 生成文件的模板数据
type Document struct {
	Header    string
	Usings    []string
	Nullable  bool
	Namespace string
	Blocks    []string                     // 每个 class 生成的代码块
	Classes   []*withergen.ClassDescriptor // 与 Blocks 一一对应
}

// DefaultTemplate 内置文档模板
//
//	// Generated Code - Do not Edit!
//
//	using System.Collections.Immutable;
//
//	#nullable enable
//
//	namespace Nighthollow.Data
//	{
//	...
//	}
const DefaultTemplate = "{{ .Header }}\n\n" +
	"{{ range .Usings | uniq }}using {{ . }};\n{{ end }}" +
	"{{ if .Nullable }}\n#nullable enable\n{{ end }}" +
	"\nnamespace {{ .Namespace }}\n" +
	"{\n" +
	"{{ range .Blocks }}{{ . }}{{ end }}" +
	"}\n"

// Renderer 文档渲染器
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer 创建渲染器，path 为空时使用内置模板
func NewRenderer(path string) (*Renderer, error) {
	if path == "" {
		tmpl, err := newTemplate("document").Parse(DefaultTemplate)
		if err != nil {
			return nil, errors.Wrap(err, "解析内置模板失败")
		}
		return &Renderer{tmpl: tmpl}, nil
	}

	content, err := readFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "读取模板 %s 失败", path)
	}
	tmpl, err := newTemplate(filepath.Base(path)).Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "解析模板 %s 失败", path)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// newTemplate 创建模板，添加 Sprig 函数
func newTemplate(name string) *template.Template {
	return template.New(name).
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap())
}

// Render 渲染完整文档
func (r *Renderer) Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, doc); err != nil {
		return nil, errors.Wrap(err, "执行模板失败")
	}
	return buf.Bytes(), nil
}

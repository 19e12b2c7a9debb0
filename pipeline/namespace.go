package pipeline

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// DeriveNamespace 根据根目录路径推导命名空间
// 取标记之后的部分，目录分隔符替换为 "."
//
//	/proj/Assets/Nighthollow/World/Data/ -> Nighthollow.World.Data
func DeriveNamespace(root, marker string) (string, error) {
	if marker == "" {
		marker = DefaultNamespaceMarker
	}
	path := toSlash(root)
	marker = toSlash(marker)

	idx := strings.Index(path, marker)
	if idx < 0 {
		// 根目录本身以标记（去掉末尾分隔符）结尾时，标记之后为空
		if strings.HasSuffix(path, strings.TrimSuffix(marker, "/")) {
			return "", errors.Wrapf(ErrEmptyNamespace, "%s", root)
		}
		return "", errors.WithHintf(
			errors.Wrapf(ErrNamespaceMarker, "%q 不包含 %q", root, marker),
			"传入 %s 之下的目录，或在配置中显式设置 namespace", marker,
		)
	}

	rest := strings.Trim(path[idx+len(marker):], "/")
	if rest == "" {
		return "", errors.Wrapf(ErrEmptyNamespace, "%s", root)
	}

	parts := strings.FieldsFunc(rest, func(r rune) bool { return r == '/' })
	return strings.Join(parts, "."), nil
}

// toSlash 统一为正斜杠，不依赖当前平台
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

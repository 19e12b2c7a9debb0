package withergen

import (
	"fmt"
	"strings"

	"github.com/donutnomad/recordgen/internal/utils"
)

// FormatHelpText 为所有注册的变体生成帮助文本
func FormatHelpText(registry *Registry) string {
	variants := registry.Variants()
	if len(variants) == 0 {
		return "  (暂无已注册的变体)\n"
	}

	var sb strings.Builder

	for _, v := range variants {
		sb.WriteString(fmt.Sprintf("  %s - %s\n", v.Name, v.Description))
		sb.WriteString(fmt.Sprintf("      marker=%s policy=%s\n", v.Marker, v.Policy))
		if len(v.Reserved) > 0 {
			prefix := v.EscapePrefix
			if prefix == "" {
				prefix = utils.DefaultEscapePrefix
			}
			sb.WriteString(fmt.Sprintf("      转义: %s (前缀 %s)\n", strings.Join(v.Reserved, ", "), prefix))
		}
	}

	return sb.String()
}

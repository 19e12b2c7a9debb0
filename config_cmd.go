package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/donutnomad/recordgen/internal/config"
	"github.com/donutnomad/recordgen/withergen"
)

func newConfigCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "配置相关命令",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "输出生效的配置（默认值、配置文件、环境变量与命令行参数合并后）",
		Example: `  recordgen config show
  recordgen config show --format yaml
  RECORDGEN_VARIANT=field recordgen config show --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Marshal(a.cfg, format)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if f := strings.ToLower(format); f != "json" {
				_, _ = fmt.Fprintln(out, "# recordgen 配置")
			}
			_, err = out.Write(data)
			return err
		},
	}
	show.Flags().StringVar(&format, "format", "toml", "输出格式: toml, yaml, json")

	cmd.AddCommand(show)
	return cmd
}

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "列出已注册的生成变体",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := withergen.Global()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprint(out, pterm.DefaultSection.Sprintf("已注册 %d 个变体", len(registry.Names())))
			_, err := fmt.Fprint(out, withergen.FormatHelpText(registry))
			return err
		},
	}
}

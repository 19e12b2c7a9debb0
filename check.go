package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/donutnomad/recordgen/pipeline"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [目录...]",
		Short: "检查生成文件是否最新，不写入磁盘",
		Long: `在内存中重新生成，与磁盘上的生成文件比较。
存在差异时输出统一 diff 并以非零状态退出，适合在 CI 中使用。`,
		RunE: a.runCheck,
	}
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	defer func() { _ = a.log.Sync() }()

	opts, err := a.runOptions(args)
	if err != nil {
		return err
	}

	drifts, err := pipeline.Check(cmd.Context(), opts)
	out := cmd.OutOrStdout()
	for _, d := range drifts {
		_, _ = fmt.Fprintln(out, d.Diff)
	}

	switch {
	case errors.Is(err, pipeline.ErrStale):
		for _, d := range drifts {
			pterm.Error.Printfln("需要重新生成: %s", d.OutputPath)
		}
		return errors.WithHint(err, "运行 recordgen gen 更新生成文件")
	case err != nil:
		return err
	}

	pterm.Success.Printfln("%d 个目录的生成文件均为最新", len(opts.Roots))
	return nil
}

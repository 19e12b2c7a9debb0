package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/donutnomad/recordgen/internal/config"
	"github.com/donutnomad/recordgen/internal/logger"
	"github.com/donutnomad/recordgen/pipeline"
	"github.com/donutnomad/recordgen/withergen"
)

// app 命令共享的状态，在 PersistentPreRunE 中初始化
type app struct {
	v          *viper.Viper
	configPath string
	logJSON    bool
	noColor    bool

	cfg *config.Config
	log *zap.SugaredLogger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// printError 输出错误及其提示
func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "错误: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		_, _ = fmt.Fprintf(w, "提示: %s\n", hint)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "recordgen [目录...]",
		Short: "为 C# 不可变 record 类生成 With 方法",
		Long: `recordgen - C# wither 代码生成工具

扫描目录下的 .cs 文件，找到 public sealed partial class 及其标记了
[Key(n)] 或 [Field] 的只读属性，为每个属性生成 WithX 方法，
输出到每个目录下的 Generated.cs。

命名空间由目录路径中 /Assets/ 之后的部分推导:
  Assets/Nighthollow/World/Data -> Nighthollow.World.Data`,
		Example: `  recordgen Assets/Nighthollow/Data           生成（默认命令）
  recordgen gen -v Assets/A Assets/B          详细模式，处理多个目录
  recordgen --variant field Assets/Model      只识别 [Field]，总是构造新实例
  recordgen check Assets/Nighthollow/Data     检查生成文件是否最新
  recordgen dev Assets/Nighthollow            开发模式，监听文件变动
  recordgen config show --format yaml         查看生效的配置
  recordgen variants                          列出内置变体`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		RunE: a.runGen,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "配置文件路径（默认查找当前目录下的 recordgen.toml / recordgen.yaml）")
	flags.BoolVar(&a.logJSON, "log-json", false, "以 JSON 格式输出日志")
	flags.BoolVar(&a.noColor, "no-color", false, "禁用彩色输出")
	flags.BoolP("verbose", "v", false, "详细输出")
	flags.String("variant", withergen.DefaultVariant, "生成变体（见 variants 命令）")
	flags.String("output", pipeline.DefaultOutput, "输出文件名，相对于每个目录")
	flags.String("namespace", "", "显式指定命名空间，不再根据路径推导")
	flags.String("template", "", "自定义文档模板路径")
	flags.Int("workers", 0, "并发扫描的工作者数量（0 表示 CPU 核数）")
	for _, key := range []string{"verbose", "variant", "output", "namespace", "template", "workers"} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "gen [目录...]",
			Short: "执行代码生成（默认命令）",
			RunE:  a.runGen,
		},
		newDevCmd(a),
		newCheckCmd(a),
		newConfigCmd(a),
		newVariantsCmd(),
	)
	return root
}

// init 加载配置并创建日志器
func (a *app) init(cmd *cobra.Command) error {
	if a.noColor {
		pterm.DisableColor()
	}

	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(logger.Options{
		Verbose: cfg.Verbose,
		JSON:    a.logJSON,
		Color:   !a.noColor && !a.logJSON,
		Output:  cmd.ErrOrStderr(),
	})
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debugf("使用配置文件: %s", used)
	}
	return nil
}

// runOptions 根据命令行参数构造运行选项，未指定目录时使用当前目录
func (a *app) runOptions(args []string) (*pipeline.RunOptions, error) {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	return a.cfg.RunOptions(roots, a.log)
}

func (a *app) runGen(cmd *cobra.Command, args []string) error {
	defer func() { _ = a.log.Sync() }()

	opts, err := a.runOptions(args)
	if err != nil {
		return err
	}
	a.log.Debugf("变体: %s (marker=%s policy=%s)", opts.Variant.Name, opts.Variant.Marker, opts.Variant.Policy)

	stats, err := pipeline.RunWithOptionsAndStats(cmd.Context(), opts)
	if stats != nil && (stats.Written > 0 || a.cfg.Verbose) {
		a.log.Infof("统计: 处理 %d 个目录, 扫描 %d 个文件, 生成 %d 个 class / %d 个 wither, 写入 %d 个文件, %d 个未变化",
			stats.Roots, stats.FilesScanned, stats.Classes, stats.Properties, stats.Written, stats.Unchanged)
		a.log.Infof("耗时: 扫描 %v, 生成 %v, 总计 %v", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
	}
	return err
}

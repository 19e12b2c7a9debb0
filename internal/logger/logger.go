package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志选项
type Options struct {
	Verbose bool      // 输出 debug 级别
	JSON    bool      // JSON 结构化输出，供机器读取
	Color   bool      // 控制台输出时给级别上色
	Output  io.Writer // 为空时使用 os.Stderr
}

// New 创建日志器
// 控制台格式: 15:04:05.000  INFO  开始生成: Assets/Nighthollow/Data
func New(opts Options) *zap.SugaredLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if opts.Color {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		// 命令行工具不需要调用位置
		encoderConfig.CallerKey = zapcore.OmitKey
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return zap.New(core).Sugar()
}

// Nop 不输出任何内容的日志器
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

package config

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/donutnomad/recordgen/internal/utils"
	"github.com/donutnomad/recordgen/pipeline"
	"github.com/donutnomad/recordgen/withergen"
)

// 配置文件名（不含后缀）与环境变量前缀
const (
	FileName  = "recordgen"
	EnvPrefix = "RECORDGEN"
)

// ErrInvalidConfig 配置不合法
var ErrInvalidConfig = errors.New("配置不合法")

// Config recordgen 的全部配置项
//
// marker / policy / reserved / escape_prefix 为空时沿用 variant 预设的值
type Config struct {
	Variant      string   `mapstructure:"variant" toml:"variant" yaml:"variant" json:"variant"`
	Marker       string   `mapstructure:"marker" toml:"marker" yaml:"marker" json:"marker"`
	Policy       string   `mapstructure:"policy" toml:"policy" yaml:"policy" json:"policy"`
	Reserved     []string `mapstructure:"reserved" toml:"reserved" yaml:"reserved" json:"reserved"`
	EscapePrefix string   `mapstructure:"escape_prefix" toml:"escape_prefix" yaml:"escape_prefix" json:"escape_prefix"`

	Usings    []string `mapstructure:"usings" toml:"usings" yaml:"usings" json:"usings"`
	Nullable  bool     `mapstructure:"nullable" toml:"nullable" yaml:"nullable" json:"nullable"`
	Header    string   `mapstructure:"header" toml:"header" yaml:"header" json:"header"`
	Namespace string   `mapstructure:"namespace" toml:"namespace" yaml:"namespace" json:"namespace"`
	Template  string   `mapstructure:"template" toml:"template" yaml:"template" json:"template"`

	NamespaceMarker string   `mapstructure:"namespace_marker" toml:"namespace_marker" yaml:"namespace_marker" json:"namespace_marker"`
	Output          string   `mapstructure:"output" toml:"output" yaml:"output" json:"output"`
	Extensions      []string `mapstructure:"extensions" toml:"extensions" yaml:"extensions" json:"extensions"`
	Exclude         []string `mapstructure:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"`

	Workers int  `mapstructure:"workers" toml:"workers" yaml:"workers" json:"workers"`
	Verbose bool `mapstructure:"verbose" toml:"verbose" yaml:"verbose" json:"verbose"`
}

// SetDefaults 设置所有配置项的默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("variant", withergen.DefaultVariant)
	v.SetDefault("marker", "")
	v.SetDefault("policy", "")
	v.SetDefault("reserved", []string{})
	v.SetDefault("escape_prefix", "")

	v.SetDefault("usings", pipeline.DefaultUsings)
	v.SetDefault("nullable", true)
	v.SetDefault("header", pipeline.DefaultHeader)
	v.SetDefault("namespace", "")
	v.SetDefault("template", "")

	v.SetDefault("namespace_marker", pipeline.DefaultNamespaceMarker)
	v.SetDefault("output", pipeline.DefaultOutput)
	v.SetDefault("extensions", pipeline.DefaultExtensions)
	v.SetDefault("exclude", pipeline.DefaultExclude)

	v.SetDefault("workers", 0) // 0 表示使用 CPU 核数
	v.SetDefault("verbose", false)
}

// New 创建带默认值和环境变量绑定的 viper 实例
// 优先级（低到高）: 默认值 < 配置文件 < RECORDGEN_* 环境变量 < 命令行参数
func New() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	return v
}

// Load 读取配置文件并解析
// path 为空时在当前目录查找 recordgen.toml / recordgen.yaml，找不到不算错误
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "读取配置文件 %s 失败", path)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "读取配置文件失败")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "解析配置失败")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	if _, err := c.BuildVariant(); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.Wrap(ErrInvalidConfig, "output 不能为空")
	}
	if strings.TrimSpace(c.NamespaceMarker) == "" {
		return errors.Wrap(ErrInvalidConfig, "namespace_marker 不能为空")
	}
	if len(c.Extensions) == 0 {
		return errors.Wrap(ErrInvalidConfig, "extensions 不能为空")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.WithHintf(
				errors.Wrapf(ErrInvalidConfig, "extensions: %q", ext),
				"后缀需要以 . 开头，如 .cs",
			)
		}
	}
	if c.Workers < 0 {
		return errors.Wrapf(ErrInvalidConfig, "workers 不能为负数: %d", c.Workers)
	}
	return nil
}

// BuildVariant 以 variant 预设为基础，叠加显式配置的字段
func (c *Config) BuildVariant() (withergen.Variant, error) {
	v, err := withergen.Lookup(c.Variant)
	if err != nil {
		return withergen.Variant{}, err
	}

	if c.Marker != "" {
		v.Marker = withergen.Marker(strings.ToLower(c.Marker))
	}
	if c.Policy != "" {
		v.Policy = withergen.Policy(strings.ToLower(c.Policy))
	}
	if len(c.Reserved) > 0 {
		v.Reserved = c.Reserved
	}
	if c.EscapePrefix != "" {
		v.EscapePrefix = c.EscapePrefix
	}
	if v.EscapePrefix == "" {
		v.EscapePrefix = utils.DefaultEscapePrefix
	}

	if err := v.Validate(); err != nil {
		return withergen.Variant{}, err
	}
	return v, nil
}

// RunOptions 转换为 pipeline 的运行选项
func (c *Config) RunOptions(roots []string, log *zap.SugaredLogger) (*pipeline.RunOptions, error) {
	variant, err := c.BuildVariant()
	if err != nil {
		return nil, err
	}
	return &pipeline.RunOptions{
		Roots:           roots,
		Variant:         variant,
		Usings:          c.Usings,
		Nullable:        c.Nullable,
		Header:          c.Header,
		Namespace:       c.Namespace,
		Template:        c.Template,
		NamespaceMarker: c.NamespaceMarker,
		Output:          c.Output,
		Extensions:      c.Extensions,
		Exclude:         c.Exclude,
		Workers:         c.Workers,
		Verbose:         c.Verbose,
		Logger:          log,
	}, nil
}

// Marshal 按指定格式输出配置，支持 toml / yaml / json
func Marshal(c *Config, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "toml":
		return toml.Marshal(c)
	case "yaml", "yml":
		return yaml.Marshal(c)
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, errors.Newf("不支持的格式: %s (可选: toml, yaml, json)", format)
	}
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/junioryono/saber/generator"
)

// EnvPrefix prefixes the environment variables read by sabergen, for example
// SABERGEN_OUTPUT_PACKAGE.
const EnvPrefix = "SABERGEN"

// Config is the merged sabergen configuration. Flags override environment
// variables, which override the config file, which overrides defaults.
type Config struct {
	Sources         []string     `mapstructure:"sources"`
	Manifest        string       `mapstructure:"manifest"`
	StrictHierarchy bool         `mapstructure:"strict_hierarchy"`
	Graph           string       `mapstructure:"graph"`
	Output          OutputConfig `mapstructure:"output"`
	Log             LogConfig    `mapstructure:"log"`
}

// OutputConfig controls generated code.
type OutputConfig struct {
	Dir         string `mapstructure:"dir"`
	Package     string `mapstructure:"package"`
	Header      string `mapstructure:"header"`
	SaberImport string `mapstructure:"saber_import"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"source":       "sources",
	"manifest":     "manifest",
	"strict":       "strict_hierarchy",
	"graph":        "graph",
	"out":          "output.dir",
	"package":      "output.package",
	"header":       "output.header",
	"saber-import": "output.saber_import",
	"log-level":    "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources", []string{})
	v.SetDefault("manifest", "saber.manifest.yaml")
	v.SetDefault("strict_hierarchy", false)
	v.SetDefault("graph", "")
	v.SetDefault("output.dir", "di")
	v.SetDefault("output.package", "di")
	v.SetDefault("output.header", "")
	v.SetDefault("output.saber_import", generator.DefaultSaberImport)
	v.SetDefault("log.level", "info")
}

// loadConfig reads the config file (explicit path, or sabergen.yaml in the
// working directory when present), the environment and flags.
func loadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("sabergen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return nil, fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

package danton

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
)

// ProcessConfig is the ambient, process-wide configuration every
// Context shares: material-description location, PDF cache directory,
// output directory, default log level. Lazily loaded and memoized
// behind GetProcessConfig(), in the style of a package-level smdConfig()
// singleton.
type ProcessConfig struct {
	MaterialsPath string
	PDFCacheDir   string
	OutputDir     string
	LogLevel      string
}

var (
	configOnce   sync.Once
	configLoaded ProcessConfig
	configErr    error
)

// DantonConfigEnv names the environment variable pointing at the
// directory containing conf.toml.
const DantonConfigEnv = "DANTON_CONFIG"

// GetProcessConfig returns the memoized ambient configuration, reading
// DANTON_CONFIG/conf.toml on first use. Subsequent calls never touch
// viper again.
func GetProcessConfig() (ProcessConfig, error) {
	configOnce.Do(func() {
		confPath := os.Getenv(DantonConfigEnv)
		if confPath == "" {
			configLoaded = ProcessConfig{
				MaterialsPath: "materials.xml",
				PDFCacheDir:   ".",
				OutputDir:     ".",
				LogLevel:      "info",
			}
			return
		}
		viper.SetConfigName("conf")
		viper.AddConfigPath(confPath)
		if err := viper.ReadInConfig(); err != nil {
			configErr = fmt.Errorf("%w: reading %s/conf.toml: %v", ErrIO, confPath, err)
			return
		}
		configLoaded = ProcessConfig{
			MaterialsPath: viper.GetString("materials.path"),
			PDFCacheDir:   viper.GetString("materials.pdf_cache_dir"),
			OutputDir:     viper.GetString("general.output_dir"),
			LogLevel:      viper.GetString("general.log_level"),
		}
		if configLoaded.OutputDir == "" {
			configLoaded.OutputDir = "."
		}
		if configLoaded.LogLevel == "" {
			configLoaded.LogLevel = "info"
		}
	})
	return configLoaded, configErr
}

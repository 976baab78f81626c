package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kubechargeback/cbdash/help"
)

const EnvPrefix = "CBDASH"

// Config holds the dashboard configuration.
type Config struct {
	APIURL          string
	RequestTimeout  time.Duration
	Window          time.Duration
	AlertsLimit     int
	TopAppsLimit    int
	DemoFallback    bool
	RefreshInterval time.Duration
	Mock            bool

	// Reach the API through the kube-apiserver service proxy
	KubeProxy       bool
	Kubeconfig      string
	KubeContext     string
	KubeNamespace   string
	KubeService     string
	KubeServicePort string

	DemoAddr string

	LogLevel  string
	LogFormat string
	LogFile   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api-url", "http://localhost:8080")
	v.SetDefault("request-timeout", "10s")
	v.SetDefault("window", "24h")
	v.SetDefault("alerts-limit", 10)
	v.SetDefault("top-apps-limit", 5)
	v.SetDefault("demo-fallback", true)
	v.SetDefault("refresh-interval", "0s")
	v.SetDefault("mock", false)
	v.SetDefault("kube-proxy", false)
	v.SetDefault("kubeconfig", filepath.Join(help.HomeDir(), ".kube", "config"))
	v.SetDefault("kube-context", "")
	v.SetDefault("kube-namespace", "kubechargeback")
	v.SetDefault("kube-service", "chargeback-api")
	v.SetDefault("kube-service-port", "8080")
	v.SetDefault("demo-addr", ":8080")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "json")
	v.SetDefault("log-file", filepath.Join(os.TempDir(), "cbdash.log"))
}

// New returns a viper instance with defaults and env binding
// (CBDASH_API_URL, CBDASH_LOG_LEVEL, ...).
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads an optional config file and builds the Config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}

	cfg := &Config{
		APIURL:          strings.TrimRight(v.GetString("api-url"), "/"),
		RequestTimeout:  v.GetDuration("request-timeout"),
		Window:          v.GetDuration("window"),
		AlertsLimit:     v.GetInt("alerts-limit"),
		TopAppsLimit:    v.GetInt("top-apps-limit"),
		DemoFallback:    v.GetBool("demo-fallback"),
		RefreshInterval: v.GetDuration("refresh-interval"),
		Mock:            v.GetBool("mock"),
		KubeProxy:       v.GetBool("kube-proxy"),
		Kubeconfig:      v.GetString("kubeconfig"),
		KubeContext:     v.GetString("kube-context"),
		KubeNamespace:   v.GetString("kube-namespace"),
		KubeService:     v.GetString("kube-service"),
		KubeServicePort: v.GetString("kube-service-port"),
		DemoAddr:        v.GetString("demo-addr"),
		LogLevel:        v.GetString("log-level"),
		LogFormat:       v.GetString("log-format"),
		LogFile:         v.GetString("log-file"),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Window <= 0 {
		return errors.Errorf("window must be positive, got %s", c.Window)
	}
	if c.AlertsLimit <= 0 || c.TopAppsLimit <= 0 {
		return errors.New("alerts-limit and top-apps-limit must be positive")
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh-interval must not be negative")
	}
	if !c.Mock && !c.KubeProxy && c.APIURL == "" {
		return errors.New("api-url is required unless --mock or --kube-proxy is set")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return errors.Errorf("log-format must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// SetupFlags registers the persistent flags and binds them to v.
func SetupFlags(cmd *cobra.Command, v *viper.Viper) error {
	f := cmd.PersistentFlags()
	f.String("api-url", "http://localhost:8080", "Base URL of the chargeback reporting API.")
	f.Duration("request-timeout", 10*time.Second, "Timeout for one load cycle.")
	f.Duration("window", 24*time.Hour, "Trailing reporting window.")
	f.Int("alerts-limit", 10, "Number of most recent alerts to load.")
	f.Int("top-apps-limit", 5, "Number of top apps by cost to load.")
	f.Bool("demo-fallback", true, "Show the labelled demo dataset when the API cannot be reached.")
	f.Duration("refresh-interval", 0, "Reload interval for the interactive view (0 disables).")
	f.Bool("mock", false, "Use the built-in demo dataset instead of the API.")
	f.Bool("kube-proxy", false, "Reach the API through the Kubernetes API server service proxy.")
	f.String("kubeconfig", filepath.Join(help.HomeDir(), ".kube", "config"), "Path to kubeconfig.")
	f.String("kube-context", "", "Kube context.")
	f.String("kube-namespace", "kubechargeback", "Namespace of the reporting service.")
	f.String("kube-service", "chargeback-api", "Name of the reporting service.")
	f.String("kube-service-port", "8080", "Port (number or name) of the reporting service.")
	f.String("log-level", "info", "Log level (debug, info, warn, error).")
	f.String("log-format", "json", "Log format (json or console).")
	f.String("log-file", filepath.Join(os.TempDir(), "cbdash.log"), "Log destination for the interactive view.")
	return v.BindPFlags(f)
}

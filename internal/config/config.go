package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/camview/internal/app"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	// File is the YAML file the settings were merged from, if any.
	File  string
	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	defaultEndpoint      = "ws://localhost:8080"
	defaultNamespace     = "/"
	defaultNoticeTimeout = 3 * time.Second
)

const (
	envEndpoint       = "CAMVIEW_ENDPOINT"
	envNamespace      = "CAMVIEW_NAMESPACE"
	envNoticeTimeout  = "CAMVIEW_NOTICE_TIMEOUT"
	envNoticeCapacity = "CAMVIEW_NOTICE_CAPACITY"
	envWidth          = "CAMVIEW_WIDTH"
	envHeight         = "CAMVIEW_HEIGHT"
	envShowFooter     = "CAMVIEW_FOOTER"
	envTrace          = "CAMVIEW_TRACE"
	envLogFile        = "CAMVIEW_LOG_FILE"
	envConfigFile     = "CAMVIEW_CONFIG"
)

// envKeys maps flag names to their environment fallbacks.
var envKeys = map[string]string{
	"endpoint":        envEndpoint,
	"namespace":       envNamespace,
	"notice-timeout":  envNoticeTimeout,
	"notice-capacity": envNoticeCapacity,
	"width":           envWidth,
	"height":          envHeight,
	"footer":          envShowFooter,
	"trace":           envTrace,
	"log-file":        envLogFile,
	"config":          envConfigFile,
}

type values struct {
	endpoint       string
	namespace      string
	noticeTimeout  time.Duration
	noticeCapacity int
	width          int
	height         int
	footer         bool
	trace          bool
	logFile        string
	configFile     string
}

func newFlagSet(v *values) *pflag.FlagSet {
	fs := pflag.NewFlagSet("camview", pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	fs.SortFlags = false
	fs.StringVarP(&v.endpoint, "endpoint", "e", defaultEndpoint, "hub address (host:port, http(s):// or ws(s)://)")
	fs.StringVar(&v.namespace, "namespace", defaultNamespace, "socket.io namespace to join")
	fs.DurationVar(&v.noticeTimeout, "notice-timeout", defaultNoticeTimeout, "how long a notice stays visible (0 keeps notices until dismissed)")
	fs.IntVar(&v.noticeCapacity, "notice-capacity", 0, "maximum queued notices (0 is unbounded)")
	fs.IntVar(&v.width, "width", 0, "desired viewport width in cells (0 uses terminal width)")
	fs.IntVar(&v.height, "height", 0, "desired viewport height in rows (0 uses terminal height)")
	fs.BoolVar(&v.footer, "footer", false, "enable footer hint row (disabled by default)")
	fs.BoolVar(&v.trace, "trace", false, "enable verbose JSON trace logging")
	fs.StringVar(&v.logFile, "log-file", "", "path to the log file")
	fs.StringVarP(&v.configFile, "config", "c", "", "YAML file with default settings")
	return fs
}

// Usage returns the flag help text.
func Usage() string {
	var v values
	return "Usage: camview [flags]\n\n" + newFlagSet(&v).FlagUsages()
}

// Load parses configuration from CLI arguments, environment variables and
// the optional config file.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Flags win over
// environment variables, which win over the config file.
func LoadArgs(args []string, environ []string) (Config, error) {
	var v values
	fs := newFlagSet(&v)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		return Config{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	explicit := make(map[string]bool, len(envKeys))
	fs.Visit(func(f *pflag.Flag) { explicit[f.Name] = true })

	env := parseEnv(environ)
	for name, key := range envKeys {
		if explicit[name] {
			continue
		}
		raw, ok := env[key]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		// Unparseable environment values fall back to the lower layers.
		if err := fs.Set(name, strings.TrimSpace(raw)); err == nil {
			explicit[name] = true
		}
	}

	if v.configFile != "" {
		if err := applyFile(fs, v.configFile, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := validate(v); err != nil {
		return Config{}, err
	}

	flags := make(map[string]string, len(envKeys))
	fs.VisitAll(func(f *pflag.Flag) { flags[f.Name] = f.Value.String() })

	return Config{
		App: app.Config{
			Endpoint:       v.endpoint,
			Namespace:      v.namespace,
			NoticeTimeout:  v.noticeTimeout,
			NoticeCapacity: v.noticeCapacity,
			Width:          v.width,
			Height:         v.height,
			ShowFooter:     v.footer,
		},
		Logging: Logging{
			FilePath: v.logFile,
			Trace:    v.trace,
		},
		File:  v.configFile,
		Flags: flags,
		Args:  append([]string(nil), args...),
	}, nil
}

// applyFile merges settings from a YAML mapping keyed by flag name. Keys
// already set by a flag or the environment are left alone.
func applyFile(fs *pflag.FlagSet, path string, explicit map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if key == "config" || fs.Lookup(key) == nil {
			return fmt.Errorf("config %s: unknown setting %q", path, key)
		}
		if explicit[key] {
			continue
		}
		if err := fs.Set(key, fileValue(key, raw[key])); err != nil {
			return fmt.Errorf("config %s: %s: %w", path, key, err)
		}
	}
	return nil
}

// fileValue renders a decoded YAML scalar as flag text. A bare number for
// notice-timeout is read as milliseconds.
func fileValue(key string, value interface{}) string {
	if value == nil {
		return ""
	}
	if key == "notice-timeout" {
		if ms, ok := value.(int); ok {
			return (time.Duration(ms) * time.Millisecond).String()
		}
	}
	return fmt.Sprint(value)
}

func validate(v values) error {
	if strings.TrimSpace(v.endpoint) == "" {
		return errors.New("endpoint must not be empty")
	}
	if v.width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", v.width)
	}
	if v.height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", v.height)
	}
	if v.noticeCapacity < 0 {
		return fmt.Errorf("notice-capacity must be >= 0 (got %d)", v.noticeCapacity)
	}
	return nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprint(os.Stdout, Usage())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n\n%s", err, Usage())
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	if cfg.App.Namespace != "" && !strings.HasPrefix(cfg.App.Namespace, "/") {
		return fmt.Errorf("namespace must start with / (got %s)", strconv.Quote(cfg.App.Namespace))
	}
	return nil
}

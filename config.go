package main

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ModeExec = "exec"
	ModeHTTP = "http"

	envPrefix = "RQBENCH"
)

var maxTimeoutSeconds = time.Duration(math.MaxInt64).Seconds()

type Config struct {
	Target string
	Folder string

	Mode      string
	Preset    string
	Command   string
	Args      string
	Params    []string
	Method    string
	Extension string
	Recursive bool

	Concurrency int
	Timeout     time.Duration
	KillGrace   time.Duration
	ChildOutput string

	Output      string
	RunID       string
	Resume      bool
	ResultsDB   string
	MetricsAddr string
	ClearCaches bool
}

func DefaultConfig() Config {
	return Config{
		Mode:        ModeExec,
		Params:      []string{"format=json"},
		Method:      "POST",
		Extension:   defaultExtension,
		Concurrency: runtime.NumCPU(),
		Timeout:     300 * time.Second,
		KillGrace:   defaultKillGrace,
		Output:      "results.csv",
	}
}

// RegisterFlags declares every setting on flags; viper later layers RQBENCH_* env vars under them.
func RegisterFlags(flags *pflag.FlagSet) {
	def := DefaultConfig()
	flags.String("mode", def.Mode, "how to reach the system under test: exec or http")
	flags.String("preset", def.Preset, "named command template (brtpf, ldf, sqlite3); override --args to pass extra positionals such as a brTPF start fragment")
	flags.String("command", def.Command, "binary to execute for every query (exec mode)")
	flags.String("args", def.Args, "argument template, placeholders: {config} {query} {name} {dir} (e.g. \"http://fragments.example/dbpedia -c {config} -f {query}\")")
	flags.StringSlice("param", def.Params, "extra request parameter key=value (http mode)")
	flags.String("method", def.Method, "HTTP method, POST or GET (http mode)")
	flags.String("ext", def.Extension, "query file extension")
	flags.Bool("recursive", def.Recursive, "discover queries in subfolders too")
	flags.IntP("concurrency", "j", def.Concurrency, "maximum number of jobs running at once")
	flags.StringP("timeout", "t", "300", "per-job timeout in seconds or as a duration (e.g. 90s, 5m)")
	flags.Duration("kill-grace", def.KillGrace, "time between SIGTERM and SIGKILL for timed out jobs")
	flags.String("child-output", def.ChildOutput, "file receiving stdout/stderr of the children (discarded when empty)")
	flags.StringP("output", "o", def.Output, "CSV results log, appended to")
	flags.String("run-id", def.RunID, "identifier written to every row (random when empty)")
	flags.Bool("resume", def.Resume, "skip queries already recorded for --run-id")
	flags.String("results-db", def.ResultsDB, "libsql URL of a database receiving the results as well")
	flags.String("metrics-addr", def.MetricsAddr, "address to serve Prometheus metrics on while running")
	flags.Bool("clear-caches", def.ClearCaches, "drop file system caches before the batch")
}

func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	return v, nil
}

func LoadConfig(v *viper.Viper, target string, folder string) (Config, error) {
	timeout, err := ParseTimeout(v.GetString("timeout"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Target:      target,
		Folder:      folder,
		Mode:        strings.ToLower(v.GetString("mode")),
		Preset:      v.GetString("preset"),
		Command:     v.GetString("command"),
		Args:        v.GetString("args"),
		Params:      v.GetStringSlice("param"),
		Method:      strings.ToUpper(v.GetString("method")),
		Extension:   v.GetString("ext"),
		Recursive:   v.GetBool("recursive"),
		Concurrency: v.GetInt("concurrency"),
		Timeout:     timeout,
		KillGrace:   v.GetDuration("kill-grace"),
		ChildOutput: v.GetString("child-output"),
		Output:      v.GetString("output"),
		RunID:       v.GetString("run-id"),
		Resume:      v.GetBool("resume"),
		ResultsDB:   v.GetString("results-db"),
		MetricsAddr: v.GetString("metrics-addr"),
		ClearCaches: v.GetBool("clear-caches"),
	}
	if cfg.Extension != "" && !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}
	if cfg.Preset != "" {
		preset, err := LookupPreset(cfg.Preset)
		if err != nil {
			return Config{}, err
		}
		if cfg.Command == "" {
			cfg.Command = preset.Command
		}
		if cfg.Args == "" {
			cfg.Args = preset.Args
		}
	}
	return cfg, cfg.Validate()
}

// ParseTimeout accepts plain seconds ("300", "0.5") or a Go duration ("5m").
func ParseTimeout(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(seconds) || math.Abs(seconds) >= maxTimeoutSeconds {
			return 0, fmt.Errorf("invalid timeout %q: out of range", value)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: expected seconds or a duration", value)
	}
	return duration, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Target == "" {
		errs = append(errs, errors.New("target config must not be empty"))
	}
	if c.Folder == "" {
		errs = append(errs, errors.New("query folder must not be empty"))
	}
	switch c.Mode {
	case ModeExec:
		if c.Command == "" {
			errs = append(errs, errors.New("exec mode needs --command or --preset"))
		}
	case ModeHTTP:
		if u, err := url.Parse(c.Target); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("http mode needs an endpoint URL as target, got %q", c.Target))
		}
		if c.Method != "POST" && c.Method != "GET" {
			errs = append(errs, fmt.Errorf("unsupported method %q", c.Method))
		}
		for _, param := range c.Params {
			if !strings.Contains(param, "=") {
				errs = append(errs, fmt.Errorf("malformed parameter %q, expected key=value", param))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %v", c.Concurrency))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w, got %v", ErrInvalidTimeout, c.Timeout))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}
	if c.Resume && c.RunID == "" {
		errs = append(errs, errors.New("--resume needs --run-id"))
	}
	return errors.Join(errs...)
}

package main

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T, args []string, target string, folder string) (Config, error) {
	t.Helper()
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.Nil(t, flags.Parse(args))
	v, err := NewViper(flags)
	require.Nil(t, err)
	return LoadConfig(v, target, folder)
}

func TestParseTimeout(t *testing.T) {
	for value, expected := range map[string]time.Duration{
		"300":  300 * time.Second,
		"0.5":  500 * time.Millisecond,
		" 5m ": 5 * time.Minute,
		"90s":  90 * time.Second,
		"0":    0,
	} {
		timeout, err := ParseTimeout(value)
		require.Nil(t, err, value)
		require.Equal(t, expected, timeout, value)
	}
	_, err := ParseTimeout("soon")
	require.ErrorContains(t, err, "soon")

	for _, value := range []string{"NaN", "Inf", "-Inf", "1e10", "9300000000"} {
		_, err := ParseTimeout(value)
		require.ErrorContains(t, err, "out of range", value)
	}
}

func TestLoadConfigPreset(t *testing.T) {
	cfg, err := loadConfig(t, []string{"--preset", "brtpf", "-j", "4", "--timeout", "60"}, "config.json", "queries")
	require.Nil(t, err)
	require.Equal(t, "./bin/brTPF-client", cfg.Command)
	require.Equal(t, "-c {config} -f {query}", cfg.Args)
	require.Equal(t, 4, cfg.Concurrency)
	require.Equal(t, time.Minute, cfg.Timeout)
	require.Equal(t, ModeExec, cfg.Mode)
	require.Equal(t, ".rq", cfg.Extension)
	require.Equal(t, "results.csv", cfg.Output)
}

func TestLoadConfigExplicitCommandOverridesPreset(t *testing.T) {
	cfg, err := loadConfig(t, []string{"--preset", "ldf", "--command", "/opt/ldf/bin/client", "--ext", "sparql"}, "config.json", "queries")
	require.Nil(t, err)
	require.Equal(t, "/opt/ldf/bin/client", cfg.Command)
	require.Equal(t, "-c {config} {query}", cfg.Args)
	require.Equal(t, ".sparql", cfg.Extension)
}

func TestLoadConfigPresetWithStartFragment(t *testing.T) {
	cfg, err := loadConfig(t, []string{"--preset", "brtpf", "--args", "http://fragments.example/dbpedia -c {config} -f {query}"}, "config.json", "queries")
	require.Nil(t, err)
	require.Equal(t, "./bin/brTPF-client", cfg.Command)

	template, err := ParseCommandTemplate(cfg.Command, cfg.Args, cfg.Target, cfg.Timeout)
	require.Nil(t, err)
	spec, err := template.ExecSpec("/queries/q1.rq")
	require.Nil(t, err)
	require.Equal(t, []string{"http://fragments.example/dbpedia", "-c", "config.json", "-f", "/queries/q1.rq"}, spec.Args)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("RQBENCH_CONCURRENCY", "7")
	t.Setenv("RQBENCH_KILL_GRACE", "3s")
	t.Setenv("RQBENCH_COMMAND", "sqlite3")
	cfg, err := loadConfig(t, nil, "db.sqlite", "queries")
	require.Nil(t, err)
	require.Equal(t, 7, cfg.Concurrency)
	require.Equal(t, 3*time.Second, cfg.KillGrace)
	require.Equal(t, "sqlite3", cfg.Command)

	cfg, err = loadConfig(t, []string{"--concurrency", "2"}, "db.sqlite", "queries")
	require.Nil(t, err)
	require.Equal(t, 2, cfg.Concurrency)
}

func TestLoadConfigHTTP(t *testing.T) {
	cfg, err := loadConfig(t, []string{"--mode", "HTTP", "--method", "get", "--param", "format=json", "--param", "timeout=0"}, "http://localhost:8890/sparql", "queries")
	require.Nil(t, err)
	require.Equal(t, ModeHTTP, cfg.Mode)
	require.Equal(t, "GET", cfg.Method)
	require.Equal(t, []string{"format=json", "timeout=0"}, cfg.Params)
}

func TestLoadConfigValidation(t *testing.T) {
	_, err := loadConfig(t, nil, "config.json", "queries")
	require.ErrorContains(t, err, "--command or --preset")

	_, err = loadConfig(t, []string{"--preset", "nope"}, "config.json", "queries")
	require.ErrorContains(t, err, "unknown preset")

	_, err = loadConfig(t, []string{"--command", "x", "--timeout", "0"}, "config.json", "queries")
	require.ErrorIs(t, err, ErrInvalidTimeout)

	_, err = loadConfig(t, []string{"--command", "x", "-j", "0"}, "config.json", "queries")
	require.ErrorContains(t, err, "concurrency")

	_, err = loadConfig(t, []string{"--mode", "http"}, "config.json", "queries")
	require.ErrorContains(t, err, "endpoint URL")

	_, err = loadConfig(t, []string{"--mode", "http", "--param", "broken"}, "http://localhost/sparql", "queries")
	require.ErrorContains(t, err, "broken")

	_, err = loadConfig(t, []string{"--command", "x", "--resume"}, "config.json", "queries")
	require.ErrorContains(t, err, "--run-id")

	_, err = loadConfig(t, []string{"--mode", "grpc"}, "config.json", "")
	require.ErrorContains(t, err, "unknown mode")
	require.ErrorContains(t, err, "query folder")
}

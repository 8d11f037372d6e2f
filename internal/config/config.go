package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/joho/godotenv"
)

const (
	DefaultAppName      = "simple-shop"
	DefaultAppHost      = "localhost"
	DefaultAppPort      = "3500"
	DefaultMaxBodyBytes = 100 << 10
)

type Config struct {
	AppName                string
	AppHost                string
	AppPort                string
	LogLevel               string
	LogFormat              string
	LogSinks               []string
	LogFilePath            string
	MaxBodyBytes           int64
	RemoteLogHttpURI       string
	RemoteTraceRpcURI      string
	TraceStdout            bool
	RemoteProfilingHttpURI string
	ClientTarget           string
	ClientDelayMs          int64
}

// SafeConfig is the view of Config that is safe to log.
type SafeConfig struct {
	AppName                string `json:"app_name"`
	AppHost                string `json:"app_host"`
	AppPort                string `json:"app_port"`
	LogLevel               string `json:"log_level"`
	LogFormat              string `json:"log_format"`
	LogSinks               string `json:"log_sinks"`
	LogFilePath            string `json:"log_file_path"`
	MaxBodyBytes           int64  `json:"max_body_bytes"`
	TraceStdout            bool   `json:"trace_stdout"`
	RemoteTraceRpcURI      string `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string `json:"remote_profiling_http_uri"`
	ClientTarget           string `json:"client_target"`
	ClientDelayMs          int64  `json:"client_delay_ms"`
}

func (c *Config) ToSafeConfig() SafeConfig {
	return SafeConfig{
		AppName:                c.AppName,
		AppHost:                c.AppHost,
		AppPort:                c.AppPort,
		LogLevel:               c.LogLevel,
		LogFormat:              c.LogFormat,
		LogSinks:               strings.Join(c.LogSinks, ","),
		LogFilePath:            c.LogFilePath,
		MaxBodyBytes:           c.MaxBodyBytes,
		TraceStdout:            c.TraceStdout,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
		ClientTarget:           c.ClientTarget,
		ClientDelayMs:          c.ClientDelayMs,
	}
}

// Addr is the listen address; the server binds every interface.
func (c *Config) Addr() string {
	return ":" + c.AppPort
}

// URL is the address printed on startup.
func (c *Config) URL() string {
	return fmt.Sprintf("http://%s:%s", c.AppHost, c.AppPort)
}

// Load builds a Config from getenv. Every key is optional.
func Load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppName:                withDefault(getenv("APP_NAME"), DefaultAppName),
		AppHost:                withDefault(getenv("APP_HOST"), DefaultAppHost),
		AppPort:                withDefault(getenv("APP_PORT"), DefaultAppPort),
		LogLevel:               withDefault(getenv("LOG_LEVEL"), "info"),
		LogFormat:              withDefault(getenv("LOG_FORMAT"), "json"),
		LogSinks:               splitList(withDefault(getenv("LOG_SINKS"), "console")),
		LogFilePath:            getenv("LOG_FILE_PATH"),
		RemoteLogHttpURI:       getenv("REMOTE_LOG_HTTP_URI"),
		RemoteTraceRpcURI:      getenv("REMOTE_TRACE_RPC_URI"),
		RemoteProfilingHttpURI: getenv("REMOTE_PROFILING_HTTP_URI"),
	}

	port, err := strconv.Atoi(cfg.AppPort)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid APP_PORT %q", cfg.AppPort)
	}

	cfg.MaxBodyBytes = DefaultMaxBodyBytes
	if v := getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_BODY_BYTES %q", v)
		}
		cfg.MaxBodyBytes = n
	}

	cfg.ClientTarget = withDefault(getenv("CLIENT_TARGET"), cfg.URL())
	cfg.ClientDelayMs = 1000
	if v := getenv("CLIENT_DELAY_MS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid CLIENT_DELAY_MS %q", v)
		}
		cfg.ClientDelayMs = n
	}

	if v := getenv("TRACE_STDOUT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TRACE_STDOUT %q: %w", v, err)
		}
		cfg.TraceStdout = b
	}

	// A remote URI alone is enough to turn the remote sink on.
	if cfg.RemoteLogHttpURI != "" && !contains(cfg.LogSinks, "remote") {
		cfg.LogSinks = append(cfg.LogSinks, "remote")
	}

	return cfg, nil
}

var (
	configInstance *Config
	configErr      error
	configOnce     sync.Once
)

// Instance loads the optional .env file and the process environment once.
func Instance() (*Config, error) {
	configOnce.Do(func() {
		// Load .env file (optional)
		_ = godotenv.Load()
		configInstance, configErr = Load(os.Getenv)
	})

	return configInstance, configErr
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_port", "3500"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + "." + jsonKey(f)

		switch v.Field(i).Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, v.Field(i).String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, v.Field(i).Int()))
		case reflect.Bool:
			attrs = append(attrs, slog.Bool(key, v.Field(i).Bool()))
		default:
			attrs = append(attrs, slog.Any(key, v.Field(i).Interface()))
		}
	}
	return attrs
}

func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

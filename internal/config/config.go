package config

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pelletier/go-toml/v2"
	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/accounts"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMetricsPath is where the server exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace is the default Prometheus namespace and tracer name.
	DefaultNamespace = "deeplink"

	// DefaultCacheTTL is how long a remote account list is reused.
	DefaultCacheTTL = "30s"
)

// ConfigFileNames are the file names Load looks for, in order.
var ConfigFileNames = []string{"deeplink.json", "deeplink.yaml", "deeplink.yml", "deeplink.toml"}

// Account source kinds.
const (
	SourceInline = "inline"
	SourceFile   = "file"
	SourceS3     = "s3"
)

// Config represents a deeplink configuration file.
type Config struct {
	// Accounts lists linked accounts inline. Used when AccountSource.Kind
	// is "inline" (the default).
	Accounts []accounts.Account `json:"accounts,omitempty" yaml:"accounts,omitempty" toml:"accounts,omitempty"`

	// AccountSource selects where the account list is loaded from.
	AccountSource AccountSourceConfig `json:"accountSource" yaml:"accountSource" toml:"accountSource"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server" yaml:"server" toml:"server"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry" toml:"telemetry"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// AccountSourceConfig selects and configures the account source.
type AccountSourceConfig struct {
	// Kind is "inline", "file" or "s3".
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`

	// Path is the account document for the file source. Relative paths
	// resolve against the config file's directory.
	Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`

	// Format overrides the document format derived from Path or Key.
	Format string `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`

	// Bucket, Key and Region locate the S3 object.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty" toml:"bucket,omitempty"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty" toml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`

	// MaxSize caps the S3 object size in bytes.
	MaxSize int64 `json:"maxSize,omitempty" yaml:"maxSize,omitempty" toml:"maxSize,omitempty"`

	// CacheTTL is how long a loaded list is reused (e.g. "30s").
	// "0s" reloads on every resolution.
	CacheTTL string `json:"cacheTTL,omitempty" yaml:"cacheTTL,omitempty" toml:"cacheTTL,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty" toml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty"`

	// MetricsPath is where Prometheus metrics are served.
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty" toml:"metricsPath,omitempty"`

	// DisableMetrics turns off the metrics endpoint and collectors.
	DisableMetrics bool `json:"disableMetrics,omitempty" yaml:"disableMetrics,omitempty" toml:"disableMetrics,omitempty"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	// LogLevel is debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty" toml:"logLevel,omitempty"`

	// MetricsNamespace prefixes every metric name.
	MetricsNamespace string `json:"metricsNamespace,omitempty" yaml:"metricsNamespace,omitempty" toml:"metricsNamespace,omitempty"`

	// TracerName names the OpenTelemetry tracer.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty" toml:"tracerName,omitempty"`

	// Tracing enables the tracing middleware.
	Tracing bool `json:"tracing,omitempty" yaml:"tracing,omitempty" toml:"tracing,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load finds and reads the configuration file in dir.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("DL201").
		WithDetail("No deeplink.json, deeplink.yaml or deeplink.toml found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format
// follows the file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("DL201").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("DL202").Wrap(err)
	}

	cfg := &Config{}
	if err := accounts.Unmarshal(accounts.FormatFromPath(path), data, cfg); err != nil {
		le := errors.New("DL202").Wrap(err)
		if line, col, ok := locate(err, data); ok {
			le.WithLocation(path, line, col)
		}
		return nil, le
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format its extension
// names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch accounts.FormatFromPath(path) {
	case accounts.FormatYAML:
		data, err = yaml.Marshal(c)
	case accounts.FormatTOML:
		data, err = toml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("DL202").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("DL202").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Account source
	if c.AccountSource.Kind == "" {
		c.AccountSource.Kind = SourceInline
	}
	if c.AccountSource.CacheTTL == "" {
		c.AccountSource.CacheTTL = DefaultCacheTTL
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}

	// Telemetry
	if c.Telemetry.LogLevel == "" {
		c.Telemetry.LogLevel = "info"
	}
	if c.Telemetry.MetricsNamespace == "" {
		c.Telemetry.MetricsNamespace = DefaultNamespace
	}
	if c.Telemetry.TracerName == "" {
		c.Telemetry.TracerName = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("DL203").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return errors.New("DL203").
			WithDetail("server.metricsPath must start with '/'")
	}
	if _, err := c.LogLevel(); err != nil {
		return errors.New("DL203").
			WithDetail("telemetry.logLevel must be debug, info, warn or error").
			Wrap(err)
	}
	if _, err := c.CacheTTL(); err != nil {
		return errors.New("DL203").
			WithDetail("accountSource.cacheTTL must be a duration such as \"30s\"").
			Wrap(err)
	}

	src := c.AccountSource
	switch src.Kind {
	case SourceInline, "":
		if _, err := accounts.Normalize(c.Accounts); err != nil {
			return errors.New("DL204").Wrap(err)
		}
	case SourceFile:
		if src.Path == "" {
			return errors.New("DL203").
				WithDetail("accountSource.path is required for the file source")
		}
	case SourceS3:
		if src.Bucket == "" || src.Key == "" {
			return errors.New("DL203").
				WithDetail("accountSource.bucket and accountSource.key are required for the s3 source")
		}
	default:
		return errors.New("DL203").
			WithDetail(fmt.Sprintf("accountSource.kind %q is not inline, file or s3", src.Kind))
	}

	switch accounts.Format(src.Format) {
	case "", accounts.FormatJSON, accounts.FormatYAML, accounts.FormatTOML:
	default:
		return errors.New("DL205").
			WithDetail(fmt.Sprintf("accountSource.format %q is not json, yaml or toml", src.Format))
	}
	return nil
}

// Address returns the listen address for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Telemetry.LogLevel))
	return level, err
}

// CacheTTL returns the account cache lifetime.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.AccountSource.CacheTTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.AccountSource.CacheTTL)
}

// AccountFilePath returns the absolute path of the file source document.
func (c *Config) AccountFilePath() string {
	path := c.AccountSource.Path
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Source builds the account source the configuration describes. Remote
// sources are wrapped in a cache when CacheTTL is positive.
func (c *Config) Source() (accounts.Source, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ttl, _ := c.CacheTTL()
	src := c.AccountSource

	var out accounts.Source
	switch src.Kind {
	case SourceFile:
		out = accounts.FileSource{Path: c.AccountFilePath(), Format: accounts.Format(src.Format)}
	case SourceS3:
		out = &accounts.S3Source{
			Client:  c.newS3Client(),
			Bucket:  src.Bucket,
			Key:     src.Key,
			Format:  accounts.Format(src.Format),
			MaxSize: src.MaxSize,
		}
	default:
		list, err := accounts.Normalize(c.Accounts)
		if err != nil {
			return nil, errors.New("DL204").Wrap(err)
		}
		return accounts.Static(list), nil
	}

	if ttl > 0 {
		out = accounts.NewCached(out, ttl)
	}
	return out, nil
}

// newS3Client builds an S3 client from the source settings. Credentials
// come from the standard AWS environment variables.
func (c *Config) newS3Client() *s3.Client {
	src := c.AccountSource
	opts := s3.Options{
		Region:      src.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if src.Endpoint != "" {
		opts.BaseEndpoint = aws.String(src.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// envCredentials reads static credentials from the environment.
func envCredentials(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, stderrors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}

// Exists reports whether a config file exists in dir.
func Exists(dir string) bool {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindRoot walks up directories to find one holding a config file.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("DL201").
				WithDetail("No deeplink configuration found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest ancestor holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// locate extracts a 1-based line and column from a decode error.
func locate(err error, data []byte) (line, col int, ok bool) {
	var tomlErr *toml.DecodeError
	if stderrors.As(err, &tomlErr) {
		line, col = tomlErr.Position()
		return line, col, true
	}

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		line, col = offsetPosition(data, syntaxErr.Offset)
		return line, col, true
	}
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		line, col = offsetPosition(data, typeErr.Offset)
		return line, col, true
	}

	// yaml.v3 reports "yaml: line N: ..." without a typed position.
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil {
			return n, 0, true
		}
	}
	return 0, 0, false
}

// offsetPosition converts a byte offset to a line and column.
func offsetPosition(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

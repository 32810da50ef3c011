package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultCacheSize   = 64
	DefaultCacheTTL    = time.Hour

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix is prepended to every environment variable
	EnvPrefix = "MCP_MINIBOOK"
)

// Config holds all configuration for the minibook MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDF configuration
	PDFDirectory    string
	OutputDirectory string // defaults to PDFDirectory
	LayoutFile      string // optional TOML signature layout

	// Cache configuration
	CacheSize int // LRU entries, 0 disables caching
	RedisAddr string
	CacheTTL  time.Duration

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio, // Default to stdio mode for MCP compatibility
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		CacheSize:    DefaultCacheSize,
		CacheTTL:     DefaultCacheTTL,
		Version:      "1.0.0",
		ServerName:   "mcp-pdf-minibook",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("outdir", cfg.OutputDirectory)
	viper.SetDefault("layout", cfg.LayoutFile)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("cachesize", cfg.CacheSize)
	viper.SetDefault("redisaddr", cfg.RedisAddr)
	viper.SetDefault("cachettl", cfg.CacheTTL)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP API")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing source PDF files")
	pflag.String("outdir", cfg.OutputDirectory, "Directory for imposed sheets (defaults to --dir)")
	pflag.String("layout", cfg.LayoutFile, "TOML signature layout file (defaults to the A4 minibook)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Int("cachesize", cfg.CacheSize, "Number of imposed sheets kept in memory (0 disables caching)")
	pflag.String("redisaddr", cfg.RedisAddr, "Redis address for a shared result cache (host:port)")
	pflag.Duration("cachettl", cfg.CacheTTL, "Lifetime of cached sheets")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "dir", "outdir", "layout",
		"loglevel", "maxfilesize", "cachesize", "redisaddr", "cachettl",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF Minibook - A Model Context Protocol server that imposes 8-page PDFs onto one foldable sheet\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/pdfs --outdir=/tmp/out   "+
			"# stdio mode with custom directories\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/path/to/pdfs       # HTTP API\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --layout=four-up.toml                   # custom signature layout\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_MODE        Server mode\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_HOST        Server host\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_PORT        Server port\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_DIR         PDF directory\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_OUTDIR      Output directory\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LAYOUT      Layout file\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LOGLEVEL    Log level\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_MAXFILESIZE Maximum file size\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_CACHESIZE   Cache entries\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_REDISADDR   Redis address\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_CACHETTL    Cache lifetime\n", EnvPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.OutputDirectory = viper.GetString("outdir")
	cfg.LayoutFile = viper.GetString("layout")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.CacheSize = viper.GetInt("cachesize")
	cfg.RedisAddr = viper.GetString("redisaddr")
	cfg.CacheTTL = viper.GetDuration("cachettl")
}

// expandPaths makes configured paths absolute and applies the output default
func (c *Config) expandPaths() {
	for _, p := range []*string{&c.PDFDirectory, &c.OutputDirectory, &c.LayoutFile} {
		if *p == "" {
			continue
		}
		if abs, err := filepath.Abs(*p); err == nil {
			*p = abs
		}
	}
	if c.OutputDirectory == "" {
		c.OutputDirectory = c.PDFDirectory
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters when the HTTP API listens
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}
	if err := ensureDirectory("PDF", c.PDFDirectory); err != nil {
		return err
	}
	if c.OutputDirectory != "" && c.OutputDirectory != c.PDFDirectory {
		if err := ensureDirectory("output", c.OutputDirectory); err != nil {
			return err
		}
	}

	if c.LayoutFile != "" {
		info, err := os.Stat(c.LayoutFile)
		if err != nil {
			return fmt.Errorf("cannot access layout file %s: %w", c.LayoutFile, err)
		}
		if info.IsDir() {
			return fmt.Errorf("layout file %s is a directory", c.LayoutFile)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.CacheSize < 0 {
		return errors.New("cache size cannot be negative")
	}
	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// ensureDirectory creates dir when it does not exist yet
func ensureDirectory(kind, dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create %s directory %s: %w", kind, dir, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access %s directory %s: %w", kind, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s directory %s is not a directory", kind, dir)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// CacheEnabled reports whether imposed sheets are cached
func (c *Config) CacheEnabled() bool {
	return c.CacheSize > 0 || c.RedisAddr != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, OutputDirectory: %s, "+
		"LayoutFile: %s, LogLevel: %s, MaxFileSize: %d, CacheSize: %d, RedisAddr: %s, CacheTTL: %s}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.OutputDirectory,
		c.LayoutFile, c.LogLevel, c.MaxFileSize, c.CacheSize, c.RedisAddr, c.CacheTTL)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts file lookups so resolution can be tested.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using the operating system.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths if provided, otherwise searches for them.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.firstExisting(configSearchPaths(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.firstExisting(envSearchPaths(serviceName))
	}
	return resolved
}

func (r *Resolver) firstExisting(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configSearchPaths(serviceName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../../cmd/%s/config.yml", serviceName),
		"./config/config.yml",
		"./config.yml",
	}
}

func envSearchPaths(serviceName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/.env", serviceName),
		fmt.Sprintf(".env.%s", serviceName),
		".env",
		"../.env",
	}
}

// LoaderConfig holds dependencies and optional overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	EnvPrefix  string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix restricts environment overrides to variables with the given
// prefix (without the trailing underscore).
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.ToUpper(prefix) }
}

// LoadConfig loads configuration for a service into cfg. The YAML file is
// read first, the .env file is loaded into the process environment, and
// environment variables are applied on top.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			fmt.Printf("[config] warning: failed to load .env file %s: %v\n", files.EnvFile, err)
		}
	}
	bindEnv(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every matching environment variable on v under all of its
// nested key variants.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	for _, env := range environ {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		key := pair[0]
		if prefix != "" {
			if !strings.HasPrefix(key, prefix+"_") {
				continue
			}
			key = strings.TrimPrefix(key, prefix+"_")
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, pair[1])
		}
	}
}

// envKeyVariants expands an environment key into the nested keys it may
// address, since underscores are ambiguous between nesting and names:
//
//	FEED_PAGE_SIZE -> [feed_page_size, feed.page.size, feed.page_size, feed_page.size]
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	variants := []string{lower, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		head := strings.Join(parts[:i], ".")
		tail := strings.Join(parts[i:], "_")
		variants = append(variants, head+"."+tail)

		headFlat := strings.Join(parts[:i], "_")
		tailNested := strings.Join(parts[i:], ".")
		variants = append(variants, headFlat+"."+tailNested)
	}

	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, s := range variants {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

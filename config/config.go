package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"partsdesk/logger"
	"partsdesk/parser"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default file locations, relative to the working directory
const (
	DefaultEnvFile             = ".env"
	DefaultParserOverridesFile = "parser_overrides.yaml"
	DefaultRolesOverrideFile   = "roles_override.yaml"
)

// Default user-facing texts for the no-answer substitution
const (
	DefaultNoAnswerTrigger = "No answer found"
	DefaultNoAnswerMessage = "Thank you for your question. We could not find an answer right now; " +
		"a member of our team will follow up with you shortly."
)

// Config represents the service configuration - settings from .env and the process environment
type Config struct {
	Port string `json:"port"`

	// Logging
	LogLevel  string `json:"log_level"`  // DEBUG, INFO, WARN, ERROR
	LogFormat string `json:"log_format"` // json or text
	LogDir    string `json:"log_dir"`    // Empty means stdout

	// Rendering
	NoAnswerTrigger string `json:"no_answer_trigger"` // Assistant content that gets replaced
	NoAnswerMessage string `json:"no_answer_message"` // Replacement shown to the user

	// HTTP surface
	RequireRole        bool     `json:"require_role"`         // Enforce X-User-Role against the access table
	CORSAllowedOrigins []string `json:"cors_allowed_origins"` // Comma-separated in the environment
	MaxBodyBytes       int64    `json:"max_body_bytes"`

	// Parser recovery decoders
	ParserLiteralFallback bool `json:"parser_literal_fallback"`
	ParserRepairFallback  bool `json:"parser_repair_fallback"`

	// Parser marker overrides (loaded from parser_overrides.yaml)
	ParserOverrides ParserOverrides `json:"parser_overrides"`

	// Role module overrides (loaded from roles_override.yaml)
	RoleModules map[string][]string `json:"role_modules"`
}

// GetDefaultConfig returns a default configuration for testing
func GetDefaultConfig() *Config {
	return &Config{
		Port:                  "3457",
		LogLevel:              "INFO",
		LogFormat:             "json",
		LogDir:                "",
		NoAnswerTrigger:       DefaultNoAnswerTrigger,
		NoAnswerMessage:       DefaultNoAnswerMessage,
		RequireRole:           false,
		CORSAllowedOrigins:    []string{"*"},
		MaxBodyBytes:          1 << 20,
		ParserLiteralFallback: true,
		ParserRepairFallback:  true,
		ParserOverrides:       ParserOverrides{},
		RoleModules:           make(map[string][]string),
	}
}

// LoadConfigWithEnv loads configuration from the default file locations
func LoadConfigWithEnv() (*Config, error) {
	return LoadConfigFromFiles(DefaultEnvFile, DefaultParserOverridesFile, DefaultRolesOverrideFile)
}

// LoadConfigFromFiles loads .env values, lets the process environment override them,
// then applies the optional YAML override files. Missing files are not errors.
func LoadConfigFromFiles(envPath, parserOverridesPath, rolesPath string) (*Config, error) {
	envVars, err := loadEnvFile(envPath)
	if err != nil {
		return nil, err
	}
	overlayProcessEnv(envVars)

	cfg := GetDefaultConfig()

	if port, exists := envVars["PORT"]; exists && port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("PORT must be numeric, got %q", port)
		}
		cfg.Port = port
		log.Printf("🔧 Configured PORT: %s", port)
	}

	if level, exists := envVars["LOG_LEVEL"]; exists {
		parsed, err := logger.ParseLevel(level)
		if err != nil {
			log.Printf("⚠️  Warning: Invalid LOG_LEVEL '%s', using default 'INFO'", level)
		}
		cfg.LogLevel = parsed.String()
		log.Printf("📊 Configured LOG_LEVEL: %s", cfg.LogLevel)
	}

	if format, exists := envVars["LOG_FORMAT"]; exists {
		switch strings.ToLower(format) {
		case "json", "text":
			cfg.LogFormat = strings.ToLower(format)
			log.Printf("📊 Configured LOG_FORMAT: %s", cfg.LogFormat)
		default:
			log.Printf("⚠️  Warning: Invalid LOG_FORMAT '%s', using default 'json'", format)
		}
	}

	if dir, exists := envVars["LOG_DIR"]; exists && dir != "" {
		cfg.LogDir = dir
		log.Printf("📁 Configured LOG_DIR: %s", dir)
	}

	if trigger, exists := envVars["NO_ANSWER_TRIGGER"]; exists && trigger != "" {
		cfg.NoAnswerTrigger = trigger
		log.Printf("💬 Configured NO_ANSWER_TRIGGER: %q", trigger)
	}

	if message, exists := envVars["NO_ANSWER_MESSAGE"]; exists && message != "" {
		cfg.NoAnswerMessage = message
		log.Printf("💬 Configured NO_ANSWER_MESSAGE (%d chars)", len(message))
	}

	if requireRole, exists := envVars["REQUIRE_ROLE"]; exists {
		cfg.RequireRole = parseBool(requireRole, false)
		log.Printf("🔒 Configured REQUIRE_ROLE: %t", cfg.RequireRole)
	}

	if origins, exists := envVars["CORS_ALLOWED_ORIGINS"]; exists && origins != "" {
		cfg.CORSAllowedOrigins = splitList(origins)
		log.Printf("🌐 Configured CORS_ALLOWED_ORIGINS: %v", cfg.CORSAllowedOrigins)
	}

	if maxBody, exists := envVars["MAX_BODY_BYTES"]; exists && maxBody != "" {
		n, err := strconv.ParseInt(maxBody, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_BODY_BYTES must be a positive integer, got %q", maxBody)
		}
		cfg.MaxBodyBytes = n
		log.Printf("🔧 Configured MAX_BODY_BYTES: %d", n)
	}

	if literal, exists := envVars["PARSER_LITERAL_FALLBACK"]; exists {
		cfg.ParserLiteralFallback = parseBool(literal, true)
		log.Printf("🧩 Configured PARSER_LITERAL_FALLBACK: %t", cfg.ParserLiteralFallback)
	}

	if repair, exists := envVars["PARSER_REPAIR_FALLBACK"]; exists {
		cfg.ParserRepairFallback = parseBool(repair, true)
		log.Printf("🧩 Configured PARSER_REPAIR_FALLBACK: %t", cfg.ParserRepairFallback)
	}

	overrides, err := LoadParserOverrides(parserOverridesPath)
	if err != nil {
		return nil, err
	}
	cfg.ParserOverrides = overrides

	roles, err := LoadRoleModules(rolesPath)
	if err != nil {
		return nil, err
	}
	cfg.RoleModules = roles

	return cfg, nil
}

// ParserOptions builds the parser options from this configuration
func (c *Config) ParserOptions() parser.Options {
	opts := parser.DefaultOptions()
	if c.ParserOverrides.Separator != "" {
		opts.Separator = c.ParserOverrides.Separator
	}
	if c.ParserOverrides.LegacySeparators != nil {
		opts.LegacySeparators = c.ParserOverrides.LegacySeparators
	}
	if len(c.ParserOverrides.KnownFields) > 0 {
		opts.KnownFields = c.ParserOverrides.KnownFields
	}
	opts.LiteralFallback = c.ParserLiteralFallback
	opts.RepairFallback = c.ParserRepairFallback
	return opts
}

// LoggerOptions builds the structured logger options from this configuration
func (c *Config) LoggerOptions() logger.Options {
	level, _ := logger.ParseLevel(c.LogLevel)
	return logger.Options{
		Level:  level,
		Format: c.LogFormat,
		Dir:    c.LogDir,
	}
}

// envKeys lists every key the process environment may override
var envKeys = []string{
	"PORT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"LOG_DIR",
	"NO_ANSWER_TRIGGER",
	"NO_ANSWER_MESSAGE",
	"REQUIRE_ROLE",
	"CORS_ALLOWED_ORIGINS",
	"MAX_BODY_BYTES",
	"PARSER_LITERAL_FALLBACK",
	"PARSER_REPAIR_FALLBACK",
}

// loadEnvFile reads key/value pairs from a .env file. A missing file yields an empty map.
func loadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return make(map[string]string), nil
	}

	envVars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("📝 %s not found, using defaults and process environment", path)
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return envVars, nil
}

func overlayProcessEnv(envVars map[string]string) {
	for _, key := range envKeys {
		if value, ok := os.LookupEnv(key); ok {
			envVars[key] = value
		}
	}
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return fallback
	}
}

// splitList splits a comma-separated value, trimming entries and dropping empty ones
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			filtered = append(filtered, part)
		}
	}
	return filtered
}

// ParserOverrides holds marker overrides for the extraction pipeline
type ParserOverrides struct {
	Separator        string   `yaml:"separator" json:"separator,omitempty"`
	LegacySeparators []string `yaml:"legacySeparators" json:"legacy_separators,omitempty"`
	KnownFields      []string `yaml:"knownFields" json:"known_fields,omitempty"`
}

// LoadParserOverrides loads marker overrides from a YAML file.
// Returns empty overrides if the file doesn't exist (no error).
func LoadParserOverrides(path string) (ParserOverrides, error) {
	var overrides ParserOverrides
	found, err := decodeYAMLFile(path, &overrides)
	if err != nil || !found {
		return ParserOverrides{}, err
	}

	log.Printf("📝 Loaded parser overrides from %s:", path)
	log.Printf("   - Separator: %q", overrides.Separator)
	log.Printf("   - Legacy separators: %d", len(overrides.LegacySeparators))
	log.Printf("   - Known fields: %d", len(overrides.KnownFields))

	return overrides, nil
}

// RoleModulesYAML represents the structure of roles_override.yaml
type RoleModulesYAML struct {
	RoleModules map[string][]string `yaml:"roleModules"`
}

// LoadRoleModules loads role to module overrides from a YAML file.
// Returns an empty map if the file doesn't exist (no error).
func LoadRoleModules(path string) (map[string][]string, error) {
	var yamlData RoleModulesYAML
	found, err := decodeYAMLFile(path, &yamlData)
	if err != nil {
		return nil, err
	}
	if !found || yamlData.RoleModules == nil {
		return make(map[string][]string), nil
	}

	log.Printf("📝 Loaded %d role overrides from %s", len(yamlData.RoleModules), path)
	for role, modules := range yamlData.RoleModules {
		log.Printf("   - %s: %v", role, modules)
	}

	return yamlData.RoleModules, nil
}

func decodeYAMLFile(path string, out interface{}) (bool, error) {
	if path == "" {
		return false, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("📝 %s not found, using built-in defaults", path)
			return false, nil
		}
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}

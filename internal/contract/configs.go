package contract

import (
	"encoding/json"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/annofabcli/schema"
)

// Default values for configuration.
const (
	DefaultEndpoint     = "https://annofab.com"
	MaxParallelism      = 64
	DefaultWaitInterval = 60 * time.Second
	DefaultWaitMaxTries = 360
	DefaultComment      = "Changed by annofabcli"
)

// DefaultParallelism is the default number of concurrent workers to use.
var DefaultParallelism = min(runtime.GOMAXPROCS(0), 8)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Credentials holds the AnnoFab login settings.
type Credentials struct {
	UserID   string
	Password string
	PAT      string // personal access token; wins over user id and password
}

// Config holds the runtime configuration for a command.
// This struct remains the "final, validated" config.
type Config struct {
	ProjectID   string
	Endpoint    string
	Credentials Credentials
	Output      schema.OutputFormat
	OutputFile  string
	Parallelism int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	Yes         bool
	DryRun      bool
	Force       bool

	// Annotation targets
	TaskIDs         []string
	AnnotationQuery string // JSON text of the CLI annotation query
	Attributes      string // JSON text of name -> value attributes
	InputPath       string // directory or zip of SimpleAnnotation files
	OutputDir       string
	Overwrite       bool
	Strict          bool
	Simple          bool

	// Annotation specs
	HistoryID     string
	FormatVersion int
	Labels        []string
	AttrNames     []string
	ShowType      bool
	Comment       string

	// Tasks
	TaskQuery string // JSON text of the CLI task query
	Operator  string // user id of the new operator
	NotAssign bool

	// Statistics
	GroupBy   schema.CountGroupBy
	CountType schema.CountType

	// Jobs
	JobType      schema.JobType
	WaitInterval time.Duration
	WaitMaxTries int

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// AuthRawInput holds the credentials section of the config file.
type AuthRawInput struct {
	UserID      string `mapstructure:"user_id"`
	Password    string `mapstructure:"password"`
	PAT         string `mapstructure:"pat"`
	EndpointURL string `mapstructure:"endpoint_url"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Credentials from config file and ANNOFAB_* env ---
	Auth AuthRawInput `mapstructure:"auth"`

	// --- Fields from rootCmd.PersistentFlags() ---
	ProjectID        string `mapstructure:"project-id"`
	Output           string `mapstructure:"format"`
	OutputFile       string `mapstructure:"output-file"`
	Parallelism      int    `mapstructure:"parallelism"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Yes              bool   `mapstructure:"yes"`
	DryRun           bool   `mapstructure:"dry-run"`
	Force            bool   `mapstructure:"force"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from annotationCmd.PersistentFlags() ---
	TaskID          string `mapstructure:"task-id"`
	AnnotationQuery string `mapstructure:"annotation-query"`
	Attributes      string `mapstructure:"attributes"`
	Input           string `mapstructure:"input"`
	OutputDir       string `mapstructure:"output-dir"`
	Overwrite       bool   `mapstructure:"overwrite"`
	Strict          bool   `mapstructure:"strict"`
	Simple          bool   `mapstructure:"simple"`

	// --- Fields from annotationSpecsCmd.PersistentFlags() ---
	HistoryID     string `mapstructure:"history-id"`
	FormatVersion int    `mapstructure:"format-version"`
	Label         string `mapstructure:"label"`
	Attribute     string `mapstructure:"attribute"`
	ShowType      bool   `mapstructure:"show-type"`
	Comment       string `mapstructure:"comment"`

	// --- Fields from taskCmd.PersistentFlags() ---
	TaskQuery string `mapstructure:"task-query"`
	UserID    string `mapstructure:"user-id"`
	NotAssign bool   `mapstructure:"not-assign"`

	// --- Fields from statisticsCmd.PersistentFlags() ---
	GroupBy   string `mapstructure:"group-by"`
	CountType string `mapstructure:"type"`

	// --- Fields from jobCmd.PersistentFlags() ---
	JobType      string `mapstructure:"job-type"`
	WaitInterval string `mapstructure:"wait-interval"`
	WaitMaxTries int    `mapstructure:"wait-max-tries"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.TaskIDs = slices.Clone(c.TaskIDs)
	clone.Labels = slices.Clone(c.Labels)
	clone.AttrNames = slices.Clone(c.AttrNames)
	return &clone
}

// RequireProject returns an error when no project id is configured.
func (c *Config) RequireProject() error {
	if c.ProjectID == "" {
		return fmt.Errorf("project id is required: pass --project-id or set project-id in the config file")
	}
	return nil
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processCredentials(cfg, input); err != nil {
		return err
	}
	if err := processAnnotationInputs(cfg, input); err != nil {
		return err
	}
	if err := processSpecsInputs(cfg, input); err != nil {
		return err
	}
	if err := processTaskInputs(cfg, input); err != nil {
		return err
	}
	if err := processStatisticsInputs(cfg, input); err != nil {
		return err
	}
	return processJobInputs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache backend: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history backend: %w", err)
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the global flags.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ProjectID = strings.TrimSpace(input.ProjectID)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Yes = input.Yes
	cfg.DryRun = input.DryRun
	cfg.Force = input.Force

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Parallelism <= 0 || input.Parallelism > MaxParallelism {
		return fmt.Errorf("parallelism must be greater than 0 and cannot exceed %d (received %d)", MaxParallelism, input.Parallelism)
	}
	cfg.Parallelism = input.Parallelism

	cfg.Output = schema.OutputFormat(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputFormats[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, pretty_json, yaml", input.Output)
	}

	return validateBackendConfigs(cfg, input)
}

// processCredentials resolves the endpoint and login settings.
func processCredentials(cfg *Config, input *ConfigRawInput) error {
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(input.Auth.EndpointURL), "/")
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return fmt.Errorf("endpoint url must start with http:// or https:// (received %q)", input.Auth.EndpointURL)
	}
	cfg.Credentials = Credentials{
		UserID:   input.Auth.UserID,
		Password: input.Auth.Password,
		PAT:      input.Auth.PAT,
	}
	return nil
}

// processAnnotationInputs handles the annotation command group flags.
func processAnnotationInputs(cfg *Config, input *ConfigRawInput) error {
	ids, err := ParseListArg(input.TaskID)
	if err != nil {
		return fmt.Errorf("invalid --task-id: %w", err)
	}
	cfg.TaskIDs = ids

	if cfg.AnnotationQuery, err = readJSONArg("annotation-query", input.AnnotationQuery); err != nil {
		return err
	}
	if cfg.Attributes, err = readJSONArg("attributes", input.Attributes); err != nil {
		return err
	}

	cfg.InputPath = strings.TrimSpace(input.Input)
	cfg.OutputDir = strings.TrimSpace(input.OutputDir)
	cfg.Overwrite = input.Overwrite
	cfg.Strict = input.Strict
	cfg.Simple = input.Simple
	return nil
}

// processSpecsInputs handles the annotation_specs command group flags.
func processSpecsInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryID = strings.TrimSpace(input.HistoryID)
	if input.FormatVersion != 0 && input.FormatVersion != 1 {
		return fmt.Errorf("--format-version must be 1 or omitted (received %d)", input.FormatVersion)
	}
	cfg.FormatVersion = input.FormatVersion

	var err error
	if cfg.Labels, err = ParseListArg(input.Label); err != nil {
		return fmt.Errorf("invalid --label: %w", err)
	}
	if cfg.AttrNames, err = ParseListArg(input.Attribute); err != nil {
		return fmt.Errorf("invalid --attribute: %w", err)
	}
	cfg.ShowType = input.ShowType
	cfg.Comment = input.Comment
	if cfg.Comment == "" {
		cfg.Comment = DefaultComment
	}
	return nil
}

// processTaskInputs handles the task command group flags.
func processTaskInputs(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.TaskQuery, err = readJSONArg("task-query", input.TaskQuery); err != nil {
		return err
	}
	cfg.Operator = strings.TrimSpace(input.UserID)
	cfg.NotAssign = input.NotAssign
	if cfg.Operator != "" && cfg.NotAssign {
		return fmt.Errorf("--user-id and --not-assign cannot be used together")
	}
	return nil
}

// processStatisticsInputs handles the statistics command group flags.
func processStatisticsInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.GroupBy = schema.CountGroupBy(strings.ToLower(input.GroupBy))
	if cfg.GroupBy == "" {
		cfg.GroupBy = schema.GroupByTask
	}
	if _, ok := schema.ValidCountGroupBys[cfg.GroupBy]; !ok {
		return fmt.Errorf("invalid --group-by '%s'. must be task_id, input_data_id", input.GroupBy)
	}

	cfg.CountType = schema.CountType(strings.ToLower(input.CountType))
	if cfg.CountType == "" {
		cfg.CountType = schema.CountByLabel
	}
	if _, ok := schema.ValidCountTypes[cfg.CountType]; !ok {
		return fmt.Errorf("invalid --type '%s'. must be label, attribute", input.CountType)
	}
	return nil
}

// processJobInputs handles the job command group flags.
func processJobInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.JobType = schema.JobType(strings.TrimSpace(input.JobType))

	cfg.WaitInterval = DefaultWaitInterval
	if input.WaitInterval != "" {
		d, err := time.ParseDuration(input.WaitInterval)
		if err != nil {
			return fmt.Errorf("invalid --wait-interval: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("--wait-interval must be positive (received %s)", d)
		}
		cfg.WaitInterval = d
	}

	cfg.WaitMaxTries = input.WaitMaxTries
	if cfg.WaitMaxTries == 0 {
		cfg.WaitMaxTries = DefaultWaitMaxTries
	}
	if cfg.WaitMaxTries < 0 {
		return fmt.Errorf("--wait-max-tries must be positive (received %d)", cfg.WaitMaxTries)
	}
	return nil
}

// readJSONArg resolves a file:// argument and checks the result is valid JSON.
func readJSONArg(flag, raw string) (string, error) {
	text, err := ReadArgValue(raw)
	if err != nil {
		return "", fmt.Errorf("invalid --%s: %w", flag, err)
	}
	if text == "" {
		return "", nil
	}
	if !json.Valid([]byte(text)) {
		return "", fmt.Errorf("invalid --%s: not a JSON value: %s", flag, text)
	}
	return text, nil
}

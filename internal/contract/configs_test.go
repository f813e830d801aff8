package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/annofabcli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		ProjectID:    "prj1",
		Output:       "text",
		Parallelism:  4,
		Color:        "yes",
		CacheBackend: string(schema.SQLiteBackend),
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", modify: func(*ConfigRawInput) {}},
		{name: "invalid output format", modify: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "pretty json is valid", modify: func(in *ConfigRawInput) { in.Output = "PRETTY_JSON" }},
		{name: "zero parallelism", modify: func(in *ConfigRawInput) { in.Parallelism = 0 }, expectError: true},
		{name: "too much parallelism", modify: func(in *ConfigRawInput) { in.Parallelism = MaxParallelism + 1 }, expectError: true},
		{name: "invalid color", modify: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "invalid cache backend", modify: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "mysql without connection", modify: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: true},
		{
			name: "mysql with connection",
			modify: func(in *ConfigRawInput) {
				in.CacheBackend = "mysql"
				in.CacheDBConnect = "user:pass@tcp(localhost:3306)/annofab"
			},
		},
		{name: "invalid endpoint", modify: func(in *ConfigRawInput) { in.Auth.EndpointURL = "annofab.com" }, expectError: true},
		{name: "invalid annotation query", modify: func(in *ConfigRawInput) { in.AnnotationQuery = "{label:" }, expectError: true},
		{name: "valid annotation query", modify: func(in *ConfigRawInput) { in.AnnotationQuery = `{"label":"car"}` }},
		{name: "invalid task query", modify: func(in *ConfigRawInput) { in.TaskQuery = "phase=annotation" }, expectError: true},
		{name: "invalid format version", modify: func(in *ConfigRawInput) { in.FormatVersion = 2 }, expectError: true},
		{name: "user id and not assign", modify: func(in *ConfigRawInput) { in.UserID = "alice"; in.NotAssign = true }, expectError: true},
		{name: "invalid group by", modify: func(in *ConfigRawInput) { in.GroupBy = "project" }, expectError: true},
		{name: "invalid count type", modify: func(in *ConfigRawInput) { in.CountType = "choice" }, expectError: true},
		{name: "invalid wait interval", modify: func(in *ConfigRawInput) { in.WaitInterval = "soon" }, expectError: true},
		{name: "negative wait interval", modify: func(in *ConfigRawInput) { in.WaitInterval = "-1s" }, expectError: true},
		{name: "negative wait tries", modify: func(in *ConfigRawInput) { in.WaitMaxTries = -3 }, expectError: true},
		{
			name: "same sqlite file for cache and history",
			modify: func(in *ConfigRawInput) {
				in.HistoryBackend = "sqlite"
				in.CacheDBConnect = "/tmp/same.db"
				in.HistoryDBConnect = "/tmp/same.db"
			},
			expectError: true,
		},
		{
			name: "history backend with default files",
			modify: func(in *ConfigRawInput) {
				in.HistoryBackend = "sqlite"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, "prj1", cfg.ProjectID)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.GroupByTask, cfg.GroupBy)
	assert.Equal(t, schema.CountByLabel, cfg.CountType)
	assert.Equal(t, DefaultWaitInterval, cfg.WaitInterval)
	assert.Equal(t, DefaultWaitMaxTries, cfg.WaitMaxTries)
	assert.Equal(t, DefaultComment, cfg.Comment)
	assert.True(t, cfg.UseColors)
	assert.Empty(t, cfg.HistoryBackend)
}

func TestProcessAndValidate_Values(t *testing.T) {
	input := validInput()
	input.Auth = AuthRawInput{UserID: "alice", Password: "secret", EndpointURL: "https://example.com/"}
	input.TaskID = "t1, t2,,t3"
	input.Label = "car,bike"
	input.WaitInterval = "30s"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "https://example.com", cfg.Endpoint)
	assert.Equal(t, Credentials{UserID: "alice", Password: "secret"}, cfg.Credentials)
	assert.Equal(t, []string{"t1", "t2", "t3"}, cfg.TaskIDs)
	assert.Equal(t, []string{"car", "bike"}, cfg.Labels)
	assert.Equal(t, 30*time.Second, cfg.WaitInterval)
}

func TestProcessAndValidate_JSONFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"label": "car"}`+"\n"), 0o644))

	input := validInput()
	input.AnnotationQuery = FileArgPrefix + path

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.JSONEq(t, `{"label":"car"}`, cfg.AnnotationQuery)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{ProjectID: "p", TaskIDs: []string{"a"}, Labels: []string{"car"}}
	clone := cfg.Clone()
	clone.TaskIDs[0] = "b"
	clone.Labels = append(clone.Labels, "bike")

	assert.Equal(t, []string{"a"}, cfg.TaskIDs)
	assert.Equal(t, []string{"car"}, cfg.Labels)
	assert.Equal(t, "p", clone.ProjectID)
}

func TestRequireProject(t *testing.T) {
	assert.Error(t, (&Config{}).RequireProject())
	assert.NoError(t, (&Config{ProjectID: "p"}).RequireProject())
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{schema.SQLiteBackend, "", false},
		{schema.NoneBackend, "", false},
		{schema.MySQLBackend, "user:pass@tcp(host:3306)/db", false},
		{schema.MySQLBackend, "user:pass@host/db", true},
		{schema.MySQLBackend, "user:pass@tcp(host:3306)", true},
		{schema.PostgreSQLBackend, "host=localhost dbname=annofab", false},
		{schema.PostgreSQLBackend, "dbname=annofab", true},
		{schema.PostgreSQLBackend, "host=localhost", true},
		{schema.PostgreSQLBackend, "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend)+"/"+tt.conn, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

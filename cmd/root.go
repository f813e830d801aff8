package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/huangsam/annofabcli/internal/annofab"
	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/iocache"
	"github.com/huangsam/annofabcli/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// cacheManager is the global persistence manager instance.
var cacheManager contract.CacheManager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "annofabcli",
	Short: "Command line tools for the AnnoFab annotation platform.",
	Long: `annofabcli manages AnnoFab projects from the terminal: annotation specs,
annotations, tasks, statistics and jobs.

Credentials are read from ANNOFAB_PAT, or ANNOFAB_USER_ID and ANNOFAB_PASSWORD,
from a .env file, or from the auth section of .annofabcli.yaml.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// normalizeFlagName lets --task_id and --task-id name the same flag.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env file is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		contract.LogWarn("Cannot load .env file", err)
	}

	setConfigSource()

	// Set environment variable prefix
	viper.SetEnvPrefix("ANNOFAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Credentials keep the names used by other AnnoFab tools
	for key, env := range map[string]string{
		"auth.user_id":      "ANNOFAB_USER_ID",
		"auth.password":     "ANNOFAB_PASSWORD",
		"auth.pat":          "ANNOFAB_PAT",
		"auth.endpoint_url": "ANNOFAB_ENDPOINT_URL",
	} {
		_ = viper.BindEnv(key, env)
	}

	// Set defaults in Viper
	viper.SetDefault("format", schema.TextOut)
	viper.SetDefault("parallelism", contract.DefaultParallelism)
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("history-backend", "")
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("comment", contract.DefaultComment)
	viper.SetDefault("wait-interval", contract.DefaultWaitInterval.String())
	viper.SetDefault("wait-max-tries", contract.DefaultWaitMaxTries)
}

// setConfigSource points viper at --config or at .annofabcli.yaml.
func setConfigSource() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".annofabcli") // Name of config file (without extension)
	viper.SetConfigType("yaml")        // We'll use YAML format
	viper.AddConfigPath(".")           // Look in the current directory
	viper.AddConfigPath("$HOME")       // Look in the home directory
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, cmd *cobra.Command, _ []string) error {
	// 1. Flag names repeat across command groups, so the running command's flags win.
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding %s flags: %w", cmd.Name(), err)
	}

	// 2. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 3. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 5. Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// projectSetupWrapper is sharedSetupWrapper for commands that act on a project.
func projectSetupWrapper(cmd *cobra.Command, args []string) error {
	if err := sharedSetup(rootCtx, cmd, args); err != nil {
		return err
	}
	return cfg.RequireProject()
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding %s flags: %w", cmd.Name(), err)
	}
	setConfigSource()

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// newClient builds the AnnoFab client. Read-only commands go through the
// response cache when one is configured; commands that change data read from
// the API and drop the cached responses they update.
func newClient(cached bool) (contract.AnnofabClient, error) {
	client, err := annofab.New(cfg.Endpoint, cfg.Credentials)
	if err != nil {
		return nil, err
	}
	return wrapClient(client, cacheManager, cached), nil
}

// wrapClient puts the response cache of mgr in front of client.
func wrapClient(client contract.AnnofabClient, mgr contract.CacheManager, cached bool) contract.AnnofabClient {
	if mgr == nil {
		return client
	}
	store := mgr.GetResponseStore()
	if store == nil {
		return client
	}
	if !cached {
		return iocache.NewInvalidatingClient(client, store)
	}
	return iocache.NewCachingClient(client, store, iocache.DefaultResponseTTL)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetCacheManager sets the global cache manager.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}

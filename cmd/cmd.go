// Package cmd defines the command-line interface for annofabcli.
package cmd

import (
	"github.com/huangsam/annofabcli/core"
	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(annotationSpecsCmd)
	rootCmd.AddCommand(annotationCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(statisticsCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(projectMemberCmd)
	rootCmd.AddCommand(inputDataCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	annotationSpecsCmd.AddCommand(specsListLabelCmd, specsListAttributeCmd, specsListChoiceCmd,
		specsListRestrictionCmd, specsListHistoryCmd, specsExportCmd,
		specsChangeLabelIDCmd, specsChangeAttributeIDCmd, specsChangeChoiceIDCmd)
	annotationCmd.AddCommand(annotationListCmd, annotationListCountCmd, annotationDeleteCmd,
		annotationChangeAttributesCmd, annotationImportCmd, annotationDumpCmd)
	taskCmd.AddCommand(taskListCmd, taskChangeOperatorCmd)
	statisticsCmd.AddCommand(statisticsAnnotationCountCmd, statisticsTaskCountCmd)
	jobCmd.AddCommand(jobListCmd, jobWaitCmd, jobUpdateAnnotationArchiveCmd)
	projectMemberCmd.AddCommand(projectMemberListCmd)
	inputDataCmd.AddCommand(inputDataListCmd)
	cacheCmd.AddCommand(cacheClearCmd, cacheStatusCmd)
	historyCmd.AddCommand(historyClearCmd, historyStatusCmd, historyExportCmd, historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("project-id", "p", "", "Target project id")
	rootCmd.PersistentFlags().StringP("format", "f", string(schema.TextOut), "Output format: text or csv or json or pretty_json or yaml")
	rootCmd.PersistentFlags().StringP("output-file", "o", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("parallelism", contract.DefaultParallelism, "Number of concurrent workers for bulk operations")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to every confirmation")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Show what would change without calling update APIs")
	rootCmd.PersistentFlags().Bool("force", false, "Also process tasks and annotations that are normally skipped")
	rootCmd.PersistentFlags().String("endpoint-url", "", "AnnoFab endpoint (default "+contract.DefaultEndpoint+")")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Response cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Statistics history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for statistics history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}
	if err := viper.BindPFlag("auth.endpoint_url", rootCmd.PersistentFlags().Lookup("endpoint-url")); err != nil {
		contract.LogFatal("Error binding endpoint flag", err)
	}

	// annotation_specs flags
	specsFlags := annotationSpecsCmd.PersistentFlags()
	specsFlags.String("history-id", "", "Use the annotation specs of this history id instead of the latest")
	specsFlags.String("label", "", "Label names or ids (comma separated)")
	specsFlags.String("attribute", "", "Attribute names or ids (comma separated)")
	specsListRestrictionCmd.Flags().Bool("show-type", false, "Prefix each restriction with the attribute type")
	specsExportCmd.Flags().Int("format-version", 0, "Set to 1 to embed attribute definitions in labels")
	specsFlags.String("comment", contract.DefaultComment, "Comment stored with the annotation specs history")
	bindFlags("annotation_specs", specsFlags)

	// annotation flags
	annotationFlags := annotationCmd.PersistentFlags()
	addTaskIDFlag(annotationFlags)
	annotationFlags.StringP("annotation-query", "q", "", "Annotation query as JSON or file://path")
	annotationChangeAttributesCmd.Flags().String("attributes", "", "Attribute values as JSON (name -> value) or file://path")
	annotationImportCmd.Flags().String("input", "", "Directory or zip of SimpleAnnotation JSON files")
	annotationImportCmd.Flags().Bool("overwrite", false, "Replace input data that already has annotations")
	annotationImportCmd.Flags().Bool("strict", false, "Fail on unknown labels and attributes instead of skipping them")
	annotationDumpCmd.Flags().String("output-dir", "", "Directory to write {task_id}/{input_data_id}.json into")
	annotationDumpCmd.Flags().Bool("simple", false, "Write SimpleAnnotation JSON with English names")
	annotationListCountCmd.Flags().String("type", string(schema.CountByLabel), "Count per label or per attribute value: label or attribute")
	bindFlags("annotation", annotationFlags)

	// task flags
	taskFlags := taskCmd.PersistentFlags()
	addTaskIDFlag(taskFlags)
	taskListCmd.Flags().StringP("task-query", "q", "", "Task query as JSON or file://path")
	taskChangeOperatorCmd.Flags().StringP("user-id", "u", "", "User id of the new operator")
	taskChangeOperatorCmd.Flags().Bool("not-assign", false, "Unassign the operator")
	bindFlags("task", taskFlags)

	// statistics flags
	statisticsFlags := statisticsAnnotationCountCmd.Flags()
	addTaskIDFlag(statisticsFlags)
	statisticsFlags.String("annotation", "", "Local SimpleAnnotation zip or directory (downloaded when empty)")
	statisticsFlags.String("group-by", string(schema.GroupByTask), "Count per task_id or input_data_id")
	statisticsFlags.String("type", string(schema.CountByLabel), "Count per label or per attribute value: label or attribute")
	if err := viper.BindPFlag("input", statisticsFlags.Lookup("annotation")); err != nil {
		contract.LogFatal("Error binding statistics flags", err)
	}

	// job flags
	jobFlags := jobCmd.PersistentFlags()
	jobFlags.String("job-type", "", "Job type, e.g. gen-annotation or gen-tasks-list")
	jobFlags.String("wait-interval", contract.DefaultWaitInterval.String(), "Time between job status checks")
	jobFlags.Int("wait-max-tries", contract.DefaultWaitMaxTries, "Maximum number of job status checks")
	bindFlags("job", jobFlags)

	// history migrate flags
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	bindFlags("history migrate", historyMigrateCmd.Flags())
}

// addTaskIDFlag adds the shared --task-id flag.
func addTaskIDFlag(flags *pflag.FlagSet) {
	flags.StringP("task-id", "t", "", "Task ids (comma separated) or file://path with one id per line")
}

// bindFlags binds a flag set to Viper and exits on failure.
func bindFlags(name string, flags *pflag.FlagSet) {
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding "+name+" flags", err)
	}
}

// runExecutor adapts an executor to a Cobra Run function. cached routes reads
// through the response cache; commands that write go straight to the API.
func runExecutor(name string, exec core.ExecutorFunc, cached bool) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		client, err := newClient(cached)
		if err != nil {
			contract.LogFatal("Cannot create AnnoFab client", err)
		}
		if err := exec(rootCtx, cfg, client, cacheManager); err != nil {
			contract.LogFatal("Cannot run "+name, err)
		}
	}
}

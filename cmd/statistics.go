package cmd

import (
	"github.com/huangsam/annofabcli/core"
	"github.com/spf13/cobra"
)

// statisticsCmd groups the statistics commands.
var statisticsCmd = &cobra.Command{
	Use:   "statistics",
	Short: "Count annotations and tasks",
	Long: `Count annotations and tasks of a project.

When --history-backend is set, every list_annotation_count run is recorded
and can be exported to Parquet with 'annofabcli history export'.`,
}

var statisticsAnnotationCountCmd = &cobra.Command{
	Use:   "list_annotation_count",
	Short: "Count annotations per task or input data",
	Long: `Count the annotations of the SimpleAnnotation archive per task (or input
data) and label (or attribute value). The archive is downloaded unless
--annotation names a local zip or directory.

Examples:
  annofabcli statistics list_annotation_count -p prj1 --group-by input_data_id
  annofabcli statistics list_annotation_count -p prj1 --annotation ./simple.zip --type attribute`,
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("statistics list_annotation_count", core.ExecuteStatisticsAnnotationCount, false),
}

var statisticsTaskCountCmd = &cobra.Command{
	Use:     "summarize_task_count",
	Short:   "Count tasks per phase, status and step",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("statistics summarize_task_count", core.ExecuteSummarizeTaskCount, true),
}

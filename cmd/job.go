package cmd

import (
	"github.com/huangsam/annofabcli/core"
	"github.com/spf13/cobra"
)

// jobCmd groups the background job commands.
var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "List and wait for background jobs",
}

var jobListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the jobs of a project",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("job list", core.ExecuteListJob, false),
}

var jobWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait until the latest job of a type finishes",
	Long: `Poll the latest job of --job-type (gen-annotation by default) every
--wait-interval until it succeeds or fails. A failed job exits non-zero.`,
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("job wait", core.ExecuteWaitJob, false),
}

var jobUpdateAnnotationArchiveCmd = &cobra.Command{
	Use:     "update_annotation_archive",
	Short:   "Regenerate the annotation archive and wait for it",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("job update_annotation_archive", core.ExecuteUpdateAnnotationArchive, false),
}

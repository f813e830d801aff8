package cmd

import (
	"github.com/huangsam/annofabcli/core"
	"github.com/spf13/cobra"
)

// taskCmd groups the task commands.
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "List tasks and change their operator",
	Long: `List tasks and change their operator.

--task-query filters tasks:

  {"phase": "annotation", "status": "not_started", "user_id": "alice"}

Examples:
  annofabcli task list -p prj1 -q '{"no_user": true}'
  annofabcli task change_operator -p prj1 -t task1,task2 -u alice`,
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tasks matching the query",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("task list", core.ExecuteListTask, true),
}

var taskChangeOperatorCmd = &cobra.Command{
	Use:     "change_operator",
	Short:   "Assign tasks to a user or unassign them",
	Long:    `Assign the --task-id tasks to --user-id, or unassign them with --not-assign. Working tasks are skipped; completed tasks are skipped unless --force.`,
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("task change_operator", core.ExecuteChangeOperator, false),
}

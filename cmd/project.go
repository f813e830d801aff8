package cmd

import (
	"github.com/huangsam/annofabcli/core"
	"github.com/spf13/cobra"
)

// projectMemberCmd groups the project member commands.
var projectMemberCmd = &cobra.Command{
	Use:     "project_member",
	Aliases: []string{"project-member"},
	Short:   "Project member commands",
}

var projectMemberListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the members of a project",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("project_member list", core.ExecuteListProjectMember, true),
}

// inputDataCmd groups the input data commands.
var inputDataCmd = &cobra.Command{
	Use:     "input_data",
	Aliases: []string{"input-data"},
	Short:   "Input data commands",
}

var inputDataListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the input data of a project",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("input_data list", core.ExecuteListInputData, false),
}

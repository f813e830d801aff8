package cmd

import (
	"github.com/huangsam/annofabcli/core"
	"github.com/spf13/cobra"
)

// annotationCmd groups the annotation commands.
var annotationCmd = &cobra.Command{
	Use:   "annotation",
	Short: "List, count, change, import and dump annotations",
	Long: `Work with the annotations of a project.

--annotation-query selects annotations by label and attribute values, using
English names or ids:

  {"label": "car", "attributes": {"occluded": true, "color": "red"}}

Commands that change annotations only touch tasks that are not_started,
break or on_hold unless --force is given.

Examples:
  # Annotations of two tasks
  annofabcli annotation list -p prj1 -t task1,task2

  # Delete unoccluded cars without asking
  annofabcli annotation delete -p prj1 -q '{"label":"car","attributes":{"occluded":false}}' --yes`,
}

var annotationListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List annotations matching the query",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation list", core.ExecuteListAnnotation, true),
}

var annotationListCountCmd = &cobra.Command{
	Use:     "list_count",
	Short:   "Count annotations matching the query per label or attribute value",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation list_count", core.ExecuteCountAnnotations, true),
}

var annotationDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete annotations matching the query",
	Long:    `Delete the matching annotations of every target task (all tasks when --task-id is empty). Protected annotations are kept unless --force.`,
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation delete", core.ExecuteDeleteAnnotation, false),
}

var annotationChangeAttributesCmd = &cobra.Command{
	Use:   "change_attributes",
	Short: "Set attribute values on annotations matching the query",
	Long: `Set the --attributes values on every annotation matching --annotation-query.

  annofabcli annotation change_attributes -p prj1 -q '{"label":"car"}' --attributes '{"occluded":true}'`,
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation change_attributes", core.ExecuteChangeAttributes, false),
}

var annotationImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import SimpleAnnotation JSON files",
	Long: `Import {task_id}/{input_data_id}.json SimpleAnnotation files from a directory
or zip. Labels and attributes are matched by English name. Input data that
already has annotations is skipped unless --overwrite.`,
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation import", core.ExecuteImportAnnotation, false),
}

var annotationDumpCmd = &cobra.Command{
	Use:     "dump",
	Short:   "Write the annotations of each input data to a JSON file",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation dump", core.ExecuteDumpAnnotation, true),
}

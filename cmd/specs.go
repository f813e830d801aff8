package cmd

import (
	"github.com/huangsam/annofabcli/core"
	"github.com/spf13/cobra"
)

// annotationSpecsCmd groups the annotation specs commands.
var annotationSpecsCmd = &cobra.Command{
	Use:     "annotation_specs",
	Aliases: []string{"annotation-specs", "specs"},
	Short:   "Inspect and change the annotation specs of a project",
	Long: `List labels, attributes, choices and restrictions of the annotation specs,
export them, or replace generated ids with readable English names.

Labels and attributes may be given by English name or by id. A name shared
by several items is an error; use the id instead.

Examples:
  # Labels of the latest specs
  annofabcli annotation_specs list_label -p prj1

  # Attributes used by the "car" label, as CSV
  annofabcli annotation_specs list_attribute -p prj1 --label car -f csv

  # Preview label id changes
  annofabcli annotation_specs change_label_id -p prj1 --dry-run`,
}

var specsListLabelCmd = &cobra.Command{
	Use:     "list_label",
	Short:   "List the labels of the annotation specs",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation_specs list_label", core.ExecuteListLabel, true),
}

var specsListAttributeCmd = &cobra.Command{
	Use:     "list_attribute",
	Short:   "List the attributes of the annotation specs",
	Long:    `List attributes with their type, default value and the labels using them. --label restricts the list to the attributes of those labels.`,
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation_specs list_attribute", core.ExecuteListAttribute, true),
}

var specsListChoiceCmd = &cobra.Command{
	Use:     "list_choice",
	Short:   "List the choices of choice and select attributes",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation_specs list_choice", core.ExecuteListChoice, true),
}

var specsListRestrictionCmd = &cobra.Command{
	Use:   "list_restriction",
	Short: "Print the attribute restrictions as sentences",
	Long: `Print every attribute restriction as an English sentence, for example:

  'occluded' can not input
  'count' is not empty IF 'color' equals 'blue'

--attribute and --label keep only the restrictions that mention them.`,
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation_specs list_restriction", core.ExecuteListRestriction, true),
}

var specsListHistoryCmd = &cobra.Command{
	Use:     "list_history",
	Short:   "List the change history of the annotation specs",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation_specs list_history", core.ExecuteListHistory, true),
}

var specsExportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Print the whole annotation specs document",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation_specs export", core.ExecuteExportSpecs, true),
}

var specsChangeLabelIDCmd = &cobra.Command{
	Use:   "change_label_id",
	Short: "Replace label ids with the English label names",
	Long: `Set the id of each label to its English name and rewrite every reference
to the old id. Labels whose name is empty, not a valid id, shared with
another label or already used as an id are left unchanged.

Existing annotations keep the old ids. Run this before annotating.`,
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation_specs change_label_id", core.ExecuteChangeLabelID, false),
}

var specsChangeAttributeIDCmd = &cobra.Command{
	Use:     "change_attribute_id",
	Short:   "Replace attribute ids with the English attribute names",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation_specs change_attribute_id", core.ExecuteChangeAttributeID, false),
}

var specsChangeChoiceIDCmd = &cobra.Command{
	Use:     "change_choice_id",
	Short:   "Replace choice ids with the English choice names",
	PreRunE: projectSetupWrapper,
	Run:     runExecutor("annotation_specs change_choice_id", core.ExecuteChangeChoiceID, false),
}

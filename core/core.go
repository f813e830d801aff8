// Package core has the command logic of annofabcli: every subcommand is an
// Execute* function that talks to AnnoFab through contract.AnnofabClient and
// prints through outwriter.
package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/specs"
	"github.com/huangsam/annofabcli/schema"
)

// ExecutorFunc defines the function signature shared by all commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, mgr contract.CacheManager) error

// Input and output used for confirmation prompts.
var (
	promptInput  io.Reader = os.Stdin
	promptOutput io.Writer = os.Stderr
)

// editableStatuses are the task statuses whose annotations may be rewritten without --force.
var editableStatuses = []schema.TaskStatus{
	schema.NotStartedStatus,
	schema.BreakStatus,
	schema.OnHoldStatus,
}

// loadAccessor fetches the annotation specs of the configured project and indexes them.
func loadAccessor(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient) (*specs.Accessor, error) {
	s, err := client.GetAnnotationSpecs(ctx, cfg.ProjectID, cfg.HistoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get annotation specs of %s: %w", cfg.ProjectID, err)
	}
	return specs.NewAccessor(s), nil
}

// annotationQuery converts the --annotation-query argument into an API query.
// An empty argument yields the zero query, which matches everything.
func annotationQuery(cfg *contract.Config, a *specs.Accessor) (schema.AnnotationQueryForAPI, error) {
	if cfg.AnnotationQuery == "" {
		return schema.AnnotationQueryForAPI{}, nil
	}
	q, err := specs.ParseAnnotationQuery(cfg.AnnotationQuery)
	if err != nil {
		return schema.AnnotationQueryForAPI{}, err
	}
	apiQuery, err := q.ToAPIQuery(a)
	if err != nil {
		return schema.AnnotationQueryForAPI{}, fmt.Errorf("invalid annotation query %s: %w", cfg.AnnotationQuery, err)
	}
	return apiQuery, nil
}

// targetTaskIDs returns --task-id, or every task id of the project when it is empty.
func targetTaskIDs(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient) ([]string, error) {
	if len(cfg.TaskIDs) > 0 {
		return cfg.TaskIDs, nil
	}
	tasks, err := client.GetAllTasks(ctx, cfg.ProjectID, schema.TaskQueryForAPI{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.TaskID
	}
	return ids, nil
}

// isEditable reports whether annotations of the task may be changed.
func isEditable(cfg *contract.Config, task *schema.Task) bool {
	return cfg.Force || slices.Contains(editableStatuses, task.Status)
}

// confirm asks a yes/no question unless --yes is set.
func confirm(cfg *contract.Config, question string) bool {
	if cfg.Yes {
		return true
	}
	return contract.Confirm(promptInput, promptOutput, question)
}

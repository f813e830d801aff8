package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/outwriter"
	"github.com/huangsam/annofabcli/schema"
)

// TaskQueryForCLI is the --task-query users write. user_id is resolved to an
// account id through the project members.
type TaskQueryForCLI struct {
	TaskID    string            `json:"task_id,omitempty"`
	Phase     schema.TaskPhase  `json:"phase,omitempty"`
	Status    schema.TaskStatus `json:"status,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	AccountID string            `json:"account_id,omitempty"`
	NoUser    bool              `json:"no_user,omitempty"`
}

// ParseTaskQuery decodes and validates a task query. Empty text is the empty query.
func ParseTaskQuery(text string) (TaskQueryForCLI, error) {
	var q TaskQueryForCLI
	if text == "" {
		return q, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&q); err != nil {
		return q, fmt.Errorf("invalid task query: %w", err)
	}
	if _, ok := schema.ValidTaskPhases[q.Phase]; q.Phase != "" && !ok {
		return q, fmt.Errorf("invalid task query: unknown phase %q", q.Phase)
	}
	if _, ok := schema.ValidTaskStatuses[q.Status]; q.Status != "" && !ok {
		return q, fmt.Errorf("invalid task query: unknown status %q", q.Status)
	}
	if q.NoUser && (q.UserID != "" || q.AccountID != "") {
		return q, errors.New("invalid task query: no_user cannot be combined with user_id or account_id")
	}
	return q, nil
}

// ToAPIQuery resolves user_id against the project members.
func (q TaskQueryForCLI) ToAPIQuery(members *memberIndex) (schema.TaskQueryForAPI, error) {
	out := schema.TaskQueryForAPI{
		TaskID:    q.TaskID,
		Phase:     q.Phase,
		Status:    q.Status,
		AccountID: q.AccountID,
		NoUser:    q.NoUser,
	}
	if q.UserID != "" {
		m, err := members.byUserID(q.UserID)
		if err != nil {
			return out, err
		}
		out.AccountID = m.AccountID
	}
	return out, nil
}

// memberIndex looks up project members by user id or account id.
type memberIndex struct {
	byUser    map[string]schema.ProjectMember
	byAccount map[string]schema.ProjectMember
}

func newMemberIndex(members []schema.ProjectMember) *memberIndex {
	idx := &memberIndex{
		byUser:    make(map[string]schema.ProjectMember, len(members)),
		byAccount: make(map[string]schema.ProjectMember, len(members)),
	}
	for _, m := range members {
		idx.byUser[m.UserID] = m
		idx.byAccount[m.AccountID] = m
	}
	return idx
}

func (idx *memberIndex) byUserID(userID string) (schema.ProjectMember, error) {
	m, ok := idx.byUser[userID]
	if !ok {
		return m, fmt.Errorf("user_id %q is not a member of the project", userID)
	}
	return m, nil
}

// accountUser returns the user id and name of an account, empty when unknown.
func (idx *memberIndex) accountUser(accountID *string) (string, string) {
	if accountID == nil {
		return "", ""
	}
	m := idx.byAccount[*accountID]
	return m.UserID, m.Username
}

func loadMembers(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient) (*memberIndex, error) {
	members, err := client.GetProjectMembers(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project members: %w", err)
	}
	return newMemberIndex(members), nil
}

// taskRow is one row of task list.
type taskRow struct {
	TaskID             string            `json:"task_id" yaml:"task_id"`
	Phase              schema.TaskPhase  `json:"phase" yaml:"phase"`
	PhaseStage         int               `json:"phase_stage" yaml:"phase_stage"`
	Status             schema.TaskStatus `json:"status" yaml:"status"`
	UserID             string            `json:"user_id" yaml:"user_id"`
	Username           string            `json:"username" yaml:"username"`
	NumberOfRejections int               `json:"number_of_rejections" yaml:"number_of_rejections"`
	WorktimeHour       float64           `json:"worktime_hour" yaml:"worktime_hour"`
	UpdatedDatetime    string            `json:"updated_datetime" yaml:"updated_datetime"`
}

var taskColumns = []outwriter.Column[taskRow]{
	{Header: "task_id", Value: func(r taskRow) string { return r.TaskID }},
	{Header: "phase", Value: func(r taskRow) string { return string(r.Phase) }},
	{Header: "phase_stage", Value: func(r taskRow) string { return strconv.Itoa(r.PhaseStage) }, Right: true},
	{
		Header:  "status",
		Value:   func(r taskRow) string { return string(r.Status) },
		Display: func(r taskRow) string { return contract.GetStatusLabel(r.Status) },
	},
	{Header: "user_id", Value: func(r taskRow) string { return r.UserID }},
	{Header: "username", Value: func(r taskRow) string { return r.Username }, Wide: true},
	{Header: "number_of_rejections", Value: func(r taskRow) string { return strconv.Itoa(r.NumberOfRejections) }, Right: true},
	{Header: "worktime_hour", Value: func(r taskRow) string { return strconv.FormatFloat(r.WorktimeHour, 'f', 2, 64) }, Right: true},
	{Header: "updated_datetime", Value: func(r taskRow) string { return r.UpdatedDatetime }},
}

// ExecuteListTask prints the tasks matching --task-query, within --task-id when given.
func ExecuteListTask(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	q, err := ParseTaskQuery(cfg.TaskQuery)
	if err != nil {
		return err
	}
	members, err := loadMembers(ctx, cfg, client)
	if err != nil {
		return err
	}
	apiQuery, err := q.ToAPIQuery(members)
	if err != nil {
		return err
	}
	tasks, err := client.GetAllTasks(ctx, cfg.ProjectID, apiQuery)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	rows := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		if len(cfg.TaskIDs) > 0 && !slices.Contains(cfg.TaskIDs, t.TaskID) {
			continue
		}
		userID, username := members.accountUser(t.AccountID)
		rows = append(rows, taskRow{
			TaskID:             t.TaskID,
			Phase:              t.Phase,
			PhaseStage:         t.PhaseStage,
			Status:             t.Status,
			UserID:             userID,
			Username:           username,
			NumberOfRejections: t.NumberOfRejections,
			WorktimeHour:       t.WorktimeHour(),
			UpdatedDatetime:    t.UpdatedDatetime,
		})
	}
	return outwriter.WriteRecords(cfg, rows, taskColumns)
}

// ExecuteChangeOperator assigns the --task-id tasks to --user-id, or unassigns
// them with --not-assign. Working tasks are always skipped, completed tasks
// unless --force.
func ExecuteChangeOperator(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	if cfg.Operator == "" && !cfg.NotAssign {
		return errors.New("either --user-id or --not-assign is required")
	}
	if len(cfg.TaskIDs) == 0 {
		return errors.New("--task-id is required")
	}

	var accountID *string
	if cfg.Operator != "" {
		members, err := loadMembers(ctx, cfg, client)
		if err != nil {
			return err
		}
		m, err := members.byUserID(cfg.Operator)
		if err != nil {
			return err
		}
		accountID = &m.AccountID
	}

	if !cfg.DryRun && !confirm(cfg, fmt.Sprintf("Change the operator of %d tasks?", len(cfg.TaskIDs))) {
		contract.LogInfo("Aborted")
		return nil
	}
	failed := runPool(ctx, cfg, "Changing operators", cfg.TaskIDs, func(id string) string { return id }, func(ctx context.Context, taskID string) error {
		return changeTaskOperator(ctx, cfg, client, taskID, accountID)
	})
	contract.LogInfo("Changed the operator of %d tasks (%d failed or skipped)", len(cfg.TaskIDs)-failed, failed)
	return nil
}

func changeTaskOperator(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, taskID string, accountID *string) error {
	task, err := client.GetTask(ctx, cfg.ProjectID, taskID)
	if err != nil {
		return err
	}
	if task.Status == schema.WorkingStatus || (task.Status == schema.CompleteStatus && !cfg.Force) {
		return fmt.Errorf("task status is %s", task.Status)
	}
	if cfg.DryRun {
		return nil
	}
	_, err = client.OperateTask(ctx, cfg.ProjectID, taskID, schema.OperateTaskRequest{
		Status:              schema.NotStartedStatus,
		LastUpdatedDatetime: task.UpdatedDatetime,
		AccountID:           accountID,
	})
	return err
}

package core

import (
	"context"
	"fmt"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/outwriter"
	"github.com/huangsam/annofabcli/schema"
)

var memberColumns = []outwriter.Column[schema.ProjectMember]{
	{Header: "user_id", Value: func(m schema.ProjectMember) string { return m.UserID }},
	{Header: "username", Value: func(m schema.ProjectMember) string { return m.Username }, Wide: true},
	{Header: "account_id", Value: func(m schema.ProjectMember) string { return m.AccountID }},
	{Header: "member_role", Value: func(m schema.ProjectMember) string { return m.MemberRole }},
	{Header: "member_status", Value: func(m schema.ProjectMember) string { return m.MemberStatus }},
}

var inputDataColumns = []outwriter.Column[schema.InputData]{
	{Header: "input_data_id", Value: func(d schema.InputData) string { return d.InputDataID }},
	{Header: "input_data_name", Value: func(d schema.InputData) string { return d.InputDataName }, Wide: true},
	{Header: "input_data_path", Value: func(d schema.InputData) string { return d.InputDataPath }, Wide: true},
	{Header: "updated_datetime", Value: func(d schema.InputData) string { return d.UpdatedDatetime }},
}

// ExecuteListProjectMember prints the members of the project.
func ExecuteListProjectMember(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	members, err := client.GetProjectMembers(ctx, cfg.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project members: %w", err)
	}
	return outwriter.WriteRecords(cfg, members, memberColumns)
}

// ExecuteListInputData prints the input data of the project.
func ExecuteListInputData(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	inputs, err := client.GetAllInputDataList(ctx, cfg.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to list input data: %w", err)
	}
	return outwriter.WriteRecords(cfg, inputs, inputDataColumns)
}

package core

import (
	"context"
	"fmt"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/outwriter"
	"github.com/huangsam/annofabcli/schema"
)

var jobColumns = []outwriter.Column[schema.ProjectJob]{
	{Header: "job_id", Value: func(j schema.ProjectJob) string { return j.JobID }},
	{Header: "job_type", Value: func(j schema.ProjectJob) string { return string(j.JobType) }},
	{
		Header:  "job_status",
		Value:   func(j schema.ProjectJob) string { return string(j.JobStatus) },
		Display: func(j schema.ProjectJob) string { return contract.GetJobStatusLabel(j.JobStatus) },
	},
	{Header: "created_datetime", Value: func(j schema.ProjectJob) string { return j.CreatedDatetime }},
	{Header: "updated_datetime", Value: func(j schema.ProjectJob) string { return j.UpdatedDatetime }},
}

// ExecuteListJob prints the jobs of the project, filtered by --job-type.
func ExecuteListJob(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	jobs, err := client.GetProjectJobs(ctx, cfg.ProjectID, cfg.JobType)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}
	return outwriter.WriteRecords(cfg, jobs, jobColumns)
}

// ExecuteWaitJob polls the latest job of --job-type until it finishes.
// A failed job or a timeout is an error.
func ExecuteWaitJob(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	jobType := cfg.JobType
	if jobType == "" {
		jobType = schema.GenAnnotationJob
	}
	contract.LogInfo("Waiting for the %s job of %s (every %s, at most %d times)",
		jobType, cfg.ProjectID, cfg.WaitInterval, cfg.WaitMaxTries)

	status, err := client.WaitForJob(ctx, cfg.ProjectID, jobType, cfg.WaitInterval, cfg.WaitMaxTries)
	if err != nil {
		return fmt.Errorf("failed to wait for the %s job: %w", jobType, err)
	}
	switch status {
	case schema.JobSucceeded:
		contract.LogInfo("The %s job %s", jobType, contract.GetJobStatusLabel(status))
		return nil
	case schema.JobFailed:
		return fmt.Errorf("the %s job failed", jobType)
	default:
		return fmt.Errorf("the %s job did not finish after %d tries", jobType, cfg.WaitMaxTries)
	}
}

// ExecuteUpdateAnnotationArchive starts regenerating the annotation archive
// and waits for the job unless --dry-run.
func ExecuteUpdateAnnotationArchive(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, mgr contract.CacheManager) error {
	if cfg.DryRun {
		contract.LogInfo("Would regenerate the annotation archive of %s", cfg.ProjectID)
		return nil
	}
	job, err := client.PostAnnotationArchiveUpdate(ctx, cfg.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to start the annotation archive update: %w", err)
	}
	contract.LogInfo("Started job %s", job.JobID)

	waitCfg := cfg.Clone()
	waitCfg.JobType = schema.GenAnnotationJob
	return ExecuteWaitJob(ctx, waitCfg, client, mgr)
}

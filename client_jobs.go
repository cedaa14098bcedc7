package hubauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ListJobs describes the listjobs operation and its observable behavior.
//
// ListJobs may return an error when input validation, dependency calls, or security checks fail.
// ListJobs does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ListJobs(ctx context.Context, filter JobFilter) (*JobPage, error) {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("q", filter.Search)
	}
	if filter.Location != "" {
		query.Set("location", filter.Location)
	}
	if len(filter.Tags) > 0 {
		query.Set("tags", strings.Join(filter.Tags, ","))
	}
	if filter.Remote != nil {
		query.Set("remote", strconv.FormatBool(*filter.Remote))
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(filter.PageSize))
	}

	var page JobPage
	if err := c.getJSON(ctx, c.cfg.Endpoints.JobsPath, query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetJob describes the getjob operation and its observable behavior.
//
// GetJob may return an error when input validation, dependency calls, or security checks fail.
// GetJob does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("hubauth: job id is required")
	}

	var job Job
	if err := c.getJSON(ctx, c.cfg.Endpoints.JobsPath+"/"+url.PathEscape(jobID), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob describes the createjob operation and its observable behavior.
//
// CreateJob may return an error when input validation, dependency calls, or security checks fail.
// CreateJob does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("hubauth: job title is required")
	}

	var job Job
	if err := c.postJSON(ctx, c.cfg.Endpoints.JobsPath, req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob describes the updatejob operation and its observable behavior.
//
// UpdateJob may return an error when input validation, dependency calls, or security checks fail.
// UpdateJob does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) UpdateJob(ctx context.Context, jobID string, req CreateJobRequest) (*Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("hubauth: job id is required")
	}

	var job Job
	if err := c.patchJSON(ctx, c.cfg.Endpoints.JobsPath+"/"+url.PathEscape(jobID), req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// DeleteJob describes the deletejob operation and its observable behavior.
//
// DeleteJob may return an error when input validation, dependency calls, or security checks fail.
// DeleteJob does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	if strings.TrimSpace(jobID) == "" {
		return fmt.Errorf("hubauth: job id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, c.cfg.Endpoints.JobsPath+"/"+url.PathEscape(jobID), nil, nil, nil)
}

// ApplyToJob describes the applytojob operation and its observable behavior.
//
// ApplyToJob may return an error when input validation, dependency calls, or security checks fail.
// ApplyToJob does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ApplyToJob(ctx context.Context, jobID string, req ApplyRequest) (*Application, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("hubauth: job id is required")
	}

	var app Application
	path := c.cfg.Endpoints.JobsPath + "/" + url.PathEscape(jobID) + "/apply"
	if err := c.postJSON(ctx, path, req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

package hubauth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// MyApplications describes the myapplications operation and its observable behavior.
//
// MyApplications may return an error when input validation, dependency calls, or security checks fail.
// MyApplications does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MyApplications(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := c.getJSON(ctx, c.cfg.Endpoints.ApplicationsPath, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateApplicationStatus describes the updateapplicationstatus operation and its observable behavior.
//
// UpdateApplicationStatus may return an error when input validation, dependency calls, or security checks fail.
// UpdateApplicationStatus does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) UpdateApplicationStatus(ctx context.Context, applicationID string, status ApplicationStatus) (*Application, error) {
	if strings.TrimSpace(applicationID) == "" {
		return nil, fmt.Errorf("hubauth: application id is required")
	}
	switch status {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
	default:
		return nil, fmt.Errorf("hubauth: unknown application status %q", status)
	}

	body := struct {
		Status ApplicationStatus `json:"status"`
	}{Status: status}

	var app Application
	path := c.cfg.Endpoints.ApplicationsPath + "/" + url.PathEscape(applicationID)
	if err := c.patchJSON(ctx, path, body, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

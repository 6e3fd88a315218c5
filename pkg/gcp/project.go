package gcp

import (
	"cloud.google.com/go/compute/metadata"
	"context"
	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
)

// Scopes are the OAuth2 scopes the exporter needs.
var Scopes = []string{
	"https://www.googleapis.com/auth/monitoring.read",
	"https://www.googleapis.com/auth/bigquery",
}

// ProjectResolver determines the Google Cloud project to export from and to.
type ProjectResolver struct {
	onGCE             func() bool
	metadataProjectId func(ctx context.Context) (string, error)
	findCredentials   func(ctx context.Context, scopes ...string) (*google.Credentials, error)
}

// NewProjectResolver creates a ProjectResolver that asks the metadata server
// and the application default credentials.
func NewProjectResolver() *ProjectResolver {
	return &ProjectResolver{
		onGCE:             metadata.OnGCE,
		metadataProjectId: metadata.ProjectIDWithContext,
		findCredentials:   google.FindDefaultCredentials,
	}
}

// Resolve returns configured if not empty.
// Otherwise, it returns the project of the instance when running on Google Cloud,
// or the project of the application default credentials.
func (r *ProjectResolver) Resolve(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	if r.onGCE() {
		projectId, err := r.metadataProjectId(ctx)
		if err == nil && projectId != "" {
			return projectId, nil
		}
	}

	creds, err := r.findCredentials(ctx, Scopes...)
	if err != nil {
		return "", errors.Wrap(err, "can't find default credentials")
	}

	if creds.ProjectID == "" {
		return "", errors.New("can't determine project, please set PROJECT_ID")
	}

	return creds.ProjectID, nil
}

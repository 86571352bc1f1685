// Package archive persists point-in-time assessment snapshots to blob
// storage so past scores remain auditable after farm records change.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

// Client abstracts blob storage for archived assessments.
type Client interface {
	PutAssessment(ctx context.Context, region, farmID, entryID string, data []byte) error
	GetAssessment(ctx context.Context, region, farmID, entryID string) ([]byte, error)
}

// Archiver serializes assessments and writes them through a Client.
type Archiver struct {
	client Client
}

// NewArchiver wraps a storage client.
func NewArchiver(client Client) *Archiver {
	return &Archiver{client: client}
}

// Archive stores the assessment under the given history entry ID and
// returns the storage key.
func (a *Archiver) Archive(ctx context.Context, assessment *distress.Assessment, entryID string) (string, error) {
	data, err := json.Marshal(assessment)
	if err != nil {
		return "", fmt.Errorf("marshal assessment: %w", err)
	}
	region := regionKey(assessment.Region)
	if err := a.client.PutAssessment(ctx, region, assessment.FarmID, entryID, data); err != nil {
		return "", err
	}
	return region + "/" + assessment.FarmID + "/" + entryID + ".json", nil
}

// regionKey normalizes a region name into a storage path segment.
func regionKey(region string) string {
	if region == "" {
		return "unassigned"
	}
	return strings.ReplaceAll(strings.ToLower(region), " ", "-")
}

// LocalStorage implements Client using the local filesystem. Useful for
// development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(region, farmID, entryID string) string {
	return filepath.Join(s.BaseDir, region, farmID, entryID+".json")
}

// PutAssessment stores an assessment blob.
func (s *LocalStorage) PutAssessment(ctx context.Context, region, farmID, entryID string, data []byte) error {
	path := s.path(region, farmID, entryID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GetAssessment retrieves an assessment blob.
func (s *LocalStorage) GetAssessment(ctx context.Context, region, farmID, entryID string) ([]byte, error) {
	return os.ReadFile(s.path(region, farmID, entryID))
}

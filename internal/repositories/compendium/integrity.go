package compendium

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-muncher/internal/redis"
)

// IssueKind classifies an integrity problem in a Redis collection
type IssueKind string

// Integrity issues
const (
	// IssueMissingBody is a name entry pointing at a document that does not exist
	IssueMissingBody IssueKind = "missing_body"
	// IssueCorruptBody is a document that does not decode
	IssueCorruptBody IssueKind = "corrupt_body"
	// IssueOrphanBody is a document no name entry points at
	IssueOrphanBody IssueKind = "orphan_body"
	// IssueNameMismatch is a document whose stored name differs from its name entry
	IssueNameMismatch IssueKind = "name_mismatch"
)

// Issue is one integrity problem
type Issue struct {
	Kind      IssueKind
	Name      string
	StorageID string
	Detail    string
}

// IntegrityReport lists the problems found in one collection
type IntegrityReport struct {
	Collection string
	// Checked counts the documents scanned
	Checked int
	Issues  []Issue
}

// CheckRedis scans a collection for index entries and documents that disagree.
// Interrupted writes can leave either side behind.
func CheckRedis(ctx context.Context, client redisclient.Client, collection string) (*IntegrityReport, error) {
	vb := errors.NewValidationBuilder()
	validateCollection(collection, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	names, err := client.HGetAll(ctx, NamesKey(collection)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read names of %s", collection)
	}
	indexed := make(map[string]string, len(names))
	for name, storageID := range names {
		indexed[storageID] = name
	}

	report := &IntegrityReport{Collection: collection, Issues: []Issue{}}
	seen := map[string]struct{}{}
	prefix := DocumentKey(collection, "")

	iter := client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		storageID := strings.TrimPrefix(key, prefix)
		seen[storageID] = struct{}{}
		report.Checked++

		body, err := client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", key)
		}

		var data documentData
		if err := json.Unmarshal([]byte(body), &data); err != nil || data.Entity == nil {
			detail := "document has no entity"
			if err != nil {
				detail = err.Error()
			}
			report.Issues = append(report.Issues, Issue{
				Kind:      IssueCorruptBody,
				Name:      indexed[storageID],
				StorageID: storageID,
				Detail:    detail,
			})
			continue
		}

		name, ok := indexed[storageID]
		switch {
		case !ok:
			report.Issues = append(report.Issues, Issue{
				Kind:      IssueOrphanBody,
				Name:      data.Name,
				StorageID: storageID,
			})
		case name != data.Name:
			report.Issues = append(report.Issues, Issue{
				Kind:      IssueNameMismatch,
				Name:      name,
				StorageID: storageID,
				Detail:    "document is named " + data.Name,
			})
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", collection)
	}

	for storageID, name := range indexed {
		if _, ok := seen[storageID]; !ok {
			report.Issues = append(report.Issues, Issue{
				Kind:      IssueMissingBody,
				Name:      name,
				StorageID: storageID,
			})
		}
	}

	return report, nil
}

// RepairRedis removes what the report found broken: corrupt and orphaned
// documents and name entries without a usable document. Name mismatches are
// left for a re-import to settle. Returns the number of issues repaired.
func RepairRedis(ctx context.Context, client redisclient.Client, report *IntegrityReport) (int, error) {
	if report == nil {
		return 0, errors.InvalidArgument("report is required")
	}

	namesKey := NamesKey(report.Collection)
	repaired := 0
	for _, issue := range report.Issues {
		pipe := client.TxPipeline()
		switch issue.Kind {
		case IssueCorruptBody:
			pipe.Del(ctx, DocumentKey(report.Collection, issue.StorageID))
			if issue.Name != "" {
				pipe.HDel(ctx, namesKey, issue.Name)
			}
		case IssueOrphanBody:
			pipe.Del(ctx, DocumentKey(report.Collection, issue.StorageID))
		case IssueMissingBody:
			pipe.HDel(ctx, namesKey, issue.Name)
		default:
			continue
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return repaired, errors.Wrapf(err, "failed to repair %s %s", issue.Kind, issue.StorageID)
		}
		repaired++
	}
	return repaired, nil
}

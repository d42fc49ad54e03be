package indexer

import (
	"encoding/json"
	"fmt"

	"github.com/tphakala/mediaseed/internal/errors"
)

// MaxSamples caps the detailed errors kept per batch.
const MaxSamples = 5

// unknown fills missing id, type and reason values.
const unknown = "unknown"

// ErrorSample is one failed document.
type ErrorSample struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Reason   string `json:"reason"`
	CausedBy string `json:"caused_by,omitempty"`
}

// BatchFailure reports one batch that did not fully succeed. Either Error is
// set (the request itself failed) or Failed counts rejected documents, with
// at most MaxSamples of them in Samples and the rest counted in Omitted.
type BatchFailure struct {
	TenantID string        `json:"tenant_id"`
	Index    string        `json:"index"`
	Batch    int           `json:"batch"`
	Size     int           `json:"size"`
	Failed   int           `json:"failed,omitempty"`
	Samples  []ErrorSample `json:"sample_errors,omitempty"`
	Omitted  int           `json:"omitted,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// sampleFailures counts rejected documents and keeps the first MaxSamples.
func sampleFailures(results []ItemResult) (failed int, samples []ErrorSample) {
	for _, r := range results {
		if !r.Failed() {
			continue
		}
		failed++
		if len(samples) == MaxSamples {
			continue
		}
		s := ErrorSample{ID: orUnknown(r.ID), Type: orUnknown(r.Error.Type), Reason: orUnknown(r.Error.Reason)}
		if r.Error.CausedBy != nil {
			s.CausedBy = orUnknown(r.Error.CausedBy.Reason)
		}
		samples = append(samples, s)
	}
	return failed, samples
}

// MissingItemType marks documents the bulk response did not report on.
const MissingItemType = "missing_item"

// tally accounts for a batch of size documents from its item results. Items
// beyond size are ignored; documents without an item count as failed, with
// one sample describing the gap.
func tally(results []ItemResult, size int) (successful, failed int, samples []ErrorSample) {
	if len(results) > size {
		results = results[:size]
	}
	failed, samples = sampleFailures(results)
	successful = len(results) - failed
	if missing := size - len(results); missing > 0 {
		failed += missing
		if len(samples) < MaxSamples {
			samples = append(samples, ErrorSample{
				ID:     unknown,
				Type:   MissingItemType,
				Reason: fmt.Sprintf("bulk response reported %d of %d items", len(results), size),
			})
		}
	}
	return successful, failed, samples
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

// ErrorReportPath names the error artifact for an output file: the output path
// with "_errors.json" appended, or upload_errors.json without one.
func ErrorReportPath(output string) string {
	if output == "" {
		return "upload_errors.json"
	}
	return output + "_errors.json"
}

// EncodeReport renders failures as an indented JSON array.
func EncodeReport(failures []BatchFailure) ([]byte, error) {
	if failures == nil {
		failures = []BatchFailure{}
	}
	data, err := json.MarshalIndent(failures, "", "  ")
	if err != nil {
		return nil, errors.New(err).
			Component("indexer").
			Category(errors.CategoryIndexing).
			Context("operation", "encode_report").
			Build()
	}
	return data, nil
}

// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package bulk

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// WriteReport writes the full run report as indented JSON.
func WriteReport(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFailures writes only the failed results, for retry workflows that
// re-submit a corrected subset.
func WriteFailures(w io.Writer, report *Report) error {
	failed := make([]Result, 0, report.Failed)
	for _, res := range report.Results {
		if !res.OK {
			failed = append(failed, res)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(failed); err != nil {
		return fmt.Errorf("encode failures: %w", err)
	}
	return nil
}

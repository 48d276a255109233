// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/okhalidi/propdock/internal/bulk"
	"github.com/okhalidi/propdock/internal/models"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

// readListingsFile decodes a listings payload, picking the codec from
// the file extension (.csv is CSV, everything else is a JSON array).
func readListingsFile(path string) ([]models.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return bulk.DecodeCSV(f)
	}
	return bulk.DecodeJSON(f)
}

// writeRunReport prints the run summary and optionally writes the full
// per-item report to path.
func writeRunReport(report *bulk.Report, path string) error {
	fmt.Printf("Run %s: %d succeeded, %d failed of %d\n",
		report.RunID, report.Succeeded, report.Failed, report.Total)

	if path == "" {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := bulk.WriteReport(f, report); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}

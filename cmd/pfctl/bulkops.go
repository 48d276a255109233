// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okhalidi/propdock/internal/bulk"
)

var bulkArgs struct {
	file    string
	publish bool
	output  string
	runID   string
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Bulk create listings from a JSON or CSV file",
	Long: `Create every listing in the file against the portal, paced by --delay.
A run id makes the run resumable: rerunning with the same --run-id skips
items that already succeeded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listings, err := readListingsFile(bulkArgs.file)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			return fmt.Errorf("no listings in %s", bulkArgs.file)
		}

		processor := bulk.NewProcessor(client, nil, bulkDelay())
		report, err := processor.CreateAll(cmd.Context(), listings, bulk.RunOptions{
			RunID:   bulkArgs.runID,
			Publish: bulkArgs.publish,
		})
		if err != nil {
			return err
		}
		return writeRunReport(report, bulkArgs.output)
	},
}

var bulkUpdateCmd = &cobra.Command{
	Use:   "bulk-update",
	Short: "Bulk update listings from a JSON or CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		listings, err := readListingsFile(bulkArgs.file)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			return fmt.Errorf("no listings in %s", bulkArgs.file)
		}

		processor := bulk.NewProcessor(client, nil, bulkDelay())
		report, err := processor.UpdateAll(cmd.Context(), listings, bulk.RunOptions{
			RunID: bulkArgs.runID,
		})
		if err != nil {
			return err
		}
		return writeRunReport(report, bulkArgs.output)
	},
}

var bulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete <listing-id>...",
	Short: "Bulk delete listings by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := bulk.NewProcessor(client, nil, bulkDelay())
		report, err := processor.DeleteAll(cmd.Context(), args, bulk.RunOptions{
			RunID: bulkArgs.runID,
		})
		if err != nil {
			return err
		}
		return writeRunReport(report, bulkArgs.output)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{createCmd, bulkUpdateCmd} {
		cmd.Flags().StringVar(&bulkArgs.file, "file", "", "JSON or CSV file of listings")
		_ = cmd.MarkFlagRequired("file")
	}
	createCmd.Flags().BoolVar(&bulkArgs.publish, "publish", false, "Publish each listing after creation")

	for _, cmd := range []*cobra.Command{createCmd, bulkUpdateCmd, bulkDeleteCmd} {
		cmd.Flags().StringVar(&bulkArgs.output, "output", "", "Write the full run report to this file")
		cmd.Flags().StringVar(&bulkArgs.runID, "run-id", "", "Run id for resumable runs")
	}

	rootCmd.AddCommand(createCmd, bulkUpdateCmd, bulkDeleteCmd)
}

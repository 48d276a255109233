// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okhalidi/propdock/internal/models"
	"github.com/okhalidi/propdock/internal/pf"
	"github.com/okhalidi/propdock/internal/validation"
)

var listArgs struct {
	status string
	limit  int
	offset int
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List listings on the portal",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := client.ListListings(cmd.Context(), pf.ListOptions{
			Status: models.ListingStatus(listArgs.status),
			Limit:  listArgs.limit,
			Offset: listArgs.offset,
		})
		if err != nil {
			return err
		}
		return printJSON(page)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <listing-id>",
	Short: "Fetch one listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listing, err := client.GetListing(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(listing)
	},
}

var createSingleArgs struct {
	file    string
	publish bool
}

var createSingleCmd = &cobra.Command{
	Use:   "create-single",
	Short: "Create one listing from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		listings, err := readListingsFile(createSingleArgs.file)
		if err != nil {
			return err
		}
		if len(listings) != 1 {
			return fmt.Errorf("expected exactly one listing in %s, got %d", createSingleArgs.file, len(listings))
		}

		listing := &listings[0]
		if verr := validation.ValidateListing(listing); verr != nil {
			return verr
		}

		created, err := client.CreateListing(cmd.Context(), listing)
		if err != nil {
			return err
		}
		if createSingleArgs.publish {
			if _, err := client.PublishListing(cmd.Context(), created.ID); err != nil {
				fmt.Printf("Created %s but publish failed: %v\n", created.ID, err)
				return printJSON(created)
			}
		}
		return printJSON(created)
	},
}

var updateArgs struct {
	file string
}

var updateCmd = &cobra.Command{
	Use:   "update <listing-id>",
	Short: "Update a listing from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listings, err := readListingsFile(updateArgs.file)
		if err != nil {
			return err
		}
		if len(listings) != 1 {
			return fmt.Errorf("expected exactly one listing in %s, got %d", updateArgs.file, len(listings))
		}

		updated, err := client.UpdateListing(cmd.Context(), args[0], &listings[0])
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <listing-id>",
	Short: "Delete a listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.DeleteListing(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <listing-id>",
	Short: "Publish a listing (spends a credit)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := client.PublishListing(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(state)
	},
}

var unpublishCmd = &cobra.Command{
	Use:   "unpublish <listing-id>",
	Short: "Take a listing off the portal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := client.UnpublishListing(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(state)
	},
}

var stateCmd = &cobra.Command{
	Use:   "state <listing-id>",
	Short: "Show a listing's publish state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := client.GetListingStateSafe(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(state)
	},
}

var pricesCmd = &cobra.Command{
	Use:   "prices <listing-id>",
	Short: "Show a listing's price history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prices, err := client.GetListingPrices(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(prices)
	},
}

func init() {
	listCmd.Flags().StringVar(&listArgs.status, "status", "", "Filter by status (draft, live, unpublished, expired)")
	listCmd.Flags().IntVar(&listArgs.limit, "limit", 50, "Page size")
	listCmd.Flags().IntVar(&listArgs.offset, "offset", 0, "Page offset")

	createSingleCmd.Flags().StringVar(&createSingleArgs.file, "file", "", "JSON file holding one listing")
	createSingleCmd.Flags().BoolVar(&createSingleArgs.publish, "publish", false, "Publish after creation")
	_ = createSingleCmd.MarkFlagRequired("file")

	updateCmd.Flags().StringVar(&updateArgs.file, "file", "", "JSON file holding the listing payload")
	_ = updateCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(listCmd, getCmd, createSingleCmd, updateCmd, deleteCmd,
		publishCmd, unpublishCmd, stateCmd, pricesCmd)
}

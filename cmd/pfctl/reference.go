// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package main

import (
	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations <search>",
	Short: "Search portal location ids",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locations, err := client.Locations(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(locations)
	},
}

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Show the account's credit balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		balance, err := client.CreditBalance(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(balance)
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show account users and credits",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := client.Users(cmd.Context())
		if err != nil {
			return err
		}

		out := map[string]interface{}{"users": users}
		if balance, err := client.CreditBalance(cmd.Context()); err == nil {
			out["credits"] = balance
		}
		return printJSON(out)
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd, creditsCmd, accountCmd)
}

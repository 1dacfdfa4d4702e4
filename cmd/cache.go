/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/sentinel/internal/output"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the translation memory cache",
	Long:  `List, inspect, invalidate and clear the translation memory used by "sentinel run".`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all translation memory entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(viper.GetString("db_path"))
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.ListMemory(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Fprintln(ui.Out, "No entries in translation memory.")
			return nil
		}

		table := ui.Table([]string{"ID", "Source", "Target", "Service", "Used", "Last used", "Invalid", "Text"})
		for _, e := range entries {
			table.Append([]string{
				e.ID,
				e.SourceLang,
				e.TargetLang,
				e.ServiceUsed,
				strconv.Itoa(e.UsageCount),
				e.LastUsed.Format("2006-01-02 15:04"),
				strconv.FormatBool(e.Invalidated),
				output.Truncate(e.SourceText, 40),
			})
		}
		return table.Render()
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show translation memory statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(viper.GetString("db_path"))
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Fprintf(ui.Out, "Total entries:   %d\n", stats.TotalEntries)
		fmt.Fprintf(ui.Out, "Active entries:  %d\n", stats.ActiveEntries)
		fmt.Fprintf(ui.Out, "Invalid entries: %d\n", stats.InvalidEntries)
		fmt.Fprintf(ui.Out, "Total usage:     %d\n", stats.TotalUsage)
		return nil
	},
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <id>",
	Short: "Stop serving a translation memory entry without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(viper.GetString("db_path"))
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.InvalidateMemory(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to invalidate entry: %w", err)
		}
		ui.Success("Invalidated entry: %s", args[0])
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a translation memory entry by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(viper.GetString("db_path"))
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteMemory(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		ui.Success("Deleted entry: %s", args[0])
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all entries from translation memory",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(viper.GetString("db_path"))
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearMemory(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		ui.Success("Cleared %d entries from translation memory.", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

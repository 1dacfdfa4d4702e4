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
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/sentinel/internal"
)

var resultsJSON bool

var resultsCmd = &cobra.Command{
	Use:   "results [run-id]",
	Short: "List stored runs or show the records of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(viper.GetString("db_path"))
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()

		if len(args) == 0 {
			runs, err := db.ListRuns(ctx)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(ui.Out, "No runs stored.")
				return nil
			}
			return printRuns(runs)
		}

		records, err := db.ListResults(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to list results: %w", err)
		}
		if len(records) == 0 {
			ui.Warning("no records for run %s", args[0])
			return nil
		}

		if resultsJSON {
			enc := json.NewEncoder(ui.Out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		return ui.Results(records)
	},
}

func printRuns(runs []internal.Run) error {
	table := ui.Table([]string{"ID", "Started", "Provider", "Key source", "Verify", "Items"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04"),
			r.Provider,
			r.KeySource,
			strconv.FormatBool(r.Verify),
			strconv.Itoa(r.Items),
		})
	}
	return table.Render()
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().BoolVar(&resultsJSON, "json", false, "Print records as JSON")
}

package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ytharvest/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent stage runs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.Storage.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(runViews(runs))
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprint(out, renderRunsTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderRunsTable(runs []store.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Stage,
			string(run.Status),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			formatElapsed(run.Duration()),
			strconv.Itoa(run.Requested),
			strconv.Itoa(run.Produced),
			strconv.Itoa(run.Unresolved),
		})
	}
	return renderTable(
		[]string{"ID", "Stage", "Status", "Started", "Duration", "Requested", "Produced", "Unresolved"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

type runView struct {
	ID              string     `json:"id"`
	Stage           string     `json:"stage"`
	Status          string     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`
	Requested       int        `json:"requested"`
	Produced        int        `json:"produced"`
	Unresolved      int        `json:"unresolved"`
	Error           string     `json:"error,omitempty"`
}

func runViews(runs []store.Run) []runView {
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		view := runView{
			ID:              run.ID,
			Stage:           run.Stage,
			Status:          string(run.Status),
			StartedAt:       run.StartedAt,
			DurationSeconds: run.Duration().Seconds(),
			Requested:       run.Requested,
			Produced:        run.Produced,
			Unresolved:      run.Unresolved,
			Error:           run.Error,
		}
		if !run.FinishedAt.IsZero() {
			finished := run.FinishedAt
			view.FinishedAt = &finished
		}
		views = append(views, view)
	}
	return views
}

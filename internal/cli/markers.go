package cli

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/rescribe/internal/storage"
)

var (
	markersRun   string
	markersName  string
	markersJSON  bool
	markersRuns  bool
	markersCount bool
)

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "List markers recorded by a scan",
	Long: `List the markers recorded by the latest 'rescribe scan', or by the run
given with --run. --runs lists the recorded runs instead.`,
	Args: cobra.NoArgs,
	RunE: runMarkers,
}

func init() {
	rootCmd.AddCommand(markersCmd)

	markersCmd.Flags().StringVar(&markersRun, "run", "", "Scan run ID (default: latest)")
	markersCmd.Flags().StringVar(&markersName, "name", "", "Only markers for this command")
	markersCmd.Flags().BoolVar(&markersJSON, "json", false, "Output as JSON")
	markersCmd.Flags().BoolVar(&markersRuns, "runs", false, "List scan runs instead of markers")
	markersCmd.Flags().BoolVar(&markersCount, "count", false, "Count markers per command")
}

func runMarkers(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	db, err := storage.Open(env.dbPath())
	if err != nil {
		return err
	}
	defer db.Close()

	opts := markersOptions{
		RunID:  markersRun,
		Name:   markersName,
		JSON:   markersJSON,
		Runs:   markersRuns,
		Counts: markersCount,
	}
	return executeMarkers(cmd.OutOrStdout(), db, opts)
}

type markersOptions struct {
	RunID  string
	Name   string
	JSON   bool
	Runs   bool
	Counts bool
}

func executeMarkers(out io.Writer, db *sql.DB, opts markersOptions) error {
	reader := storage.NewMarkerReader(db)

	if opts.Runs {
		runs, err := reader.Runs()
		if err != nil {
			return err
		}
		if opts.JSON {
			return writeJSON(out, runs)
		}
		for _, run := range runs {
			fmt.Fprintf(out, "%s  %s  %s\n", run.ID,
				subtitleStyle.Render(run.StartedAt.Local().Format("2006-01-02 15:04:05")),
				run.Root)
		}
		return nil
	}

	var run *storage.ScanRun
	var err error
	if opts.RunID != "" {
		run, err = reader.Run(opts.RunID)
	} else {
		run, err = reader.LatestRun()
	}
	if err != nil {
		return err
	}
	if run == nil {
		if opts.RunID != "" {
			return fmt.Errorf("scan run %s not found", opts.RunID)
		}
		return fmt.Errorf("no scans recorded yet; run 'rescribe scan' first")
	}

	if opts.Counts {
		counts, err := reader.CountByName(run.ID)
		if err != nil {
			return err
		}
		if opts.JSON {
			return writeJSON(out, counts)
		}
		for _, c := range counts {
			fmt.Fprintf(out, "%6d  %s\n", c.Count, commandStyle.Render(c.Name))
		}
		return nil
	}

	markers, err := reader.Markers(run.ID, opts.Name)
	if err != nil {
		return err
	}
	if opts.JSON {
		return writeJSON(out, markers)
	}
	for _, m := range markers {
		fmt.Fprintf(out, "%s %s\n",
			subtitleStyle.Render(fmt.Sprintf("%s:%d", m.Path, m.Line)),
			commandStyle.Render(markerText(m.Name, m.Args)))
	}
	return nil
}

package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/rescribe/internal/config"
	"github.com/mvp-joe/rescribe/internal/discovery"
	"github.com/mvp-joe/rescribe/internal/expand"
	"github.com/mvp-joe/rescribe/internal/storage"
)

var (
	scanQuiet bool
	scanKeep  int
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Record every command marker in a project",
	Long: `Walk the project (paths.include / paths.ignore), record every marker in
every file, and store the result as a new scan run in the marker database.

Use 'rescribe markers' to read the latest run back.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Suppress progress output")
	scanCmd.Flags().IntVar(&scanKeep, "keep", 10, "Number of scan runs to keep (0 keeps all)")
}

func runScan(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	dir := env.root
	if len(args) == 1 {
		if dir, err = filepath.Abs(args[0]); err != nil {
			return err
		}
	}
	engine, err := env.engine()
	if err != nil {
		return err
	}

	lock, err := storage.AcquireWriteLock(env.dbPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	db, err := storage.Open(env.dbPath())
	if err != nil {
		return err
	}
	defer db.Close()

	opts := scanOptions{
		Dir:      dir,
		Paths:    env.cfg.Paths,
		Keep:     scanKeep,
		Progress: newScanProgress(cmd.ErrOrStderr(), scanQuiet),
	}
	run, err := executeScan(engine, storage.NewMarkerWriter(db), opts, env.logger)
	if err != nil {
		return err
	}
	if !scanQuiet {
		printRunSummary(cmd.OutOrStdout(), run)
	}
	return nil
}

type scanOptions struct {
	Dir      string
	Paths    config.PathsConfig
	Keep     int
	Progress expand.ScanProgress
}

// executeScan discovers files, scans them and records the run. Marker paths
// are stored relative to Dir.
func executeScan(engine *expand.Engine, writer *storage.MarkerWriter, opts scanOptions, logger *log.Logger) (*storage.ScanRun, error) {
	fd, err := discovery.New(opts.Dir, opts.Paths.Include, opts.Paths.Ignore)
	if err != nil {
		return nil, err
	}
	files, err := fd.Discover()
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered files", "dir", opts.Dir, "count", len(files))

	run := storage.NewScanRun(opts.Dir)
	report := engine.ScanFiles(files, opts.Progress)
	run.Files = report.Files
	run.Skipped = len(report.Skipped)

	records := make([]storage.MarkerRecord, 0, len(report.Markers))
	for _, fm := range report.Markers {
		rel, err := filepath.Rel(opts.Dir, fm.Path)
		if err != nil {
			rel = fm.Path
		}
		records = append(records, storage.MarkerRecord{
			Path: filepath.ToSlash(rel),
			Line: fm.Line,
			Name: fm.Name,
			Args: fm.Args,
		})
	}

	if err := writer.WriteRun(run, records); err != nil {
		return nil, err
	}
	pruned, err := writer.PruneRuns(opts.Keep)
	if err != nil {
		return nil, err
	}
	logger.Debug("recorded scan run", "run", run.ID, "markers", len(records), "pruned", pruned)
	return run, nil
}

func printRunSummary(out io.Writer, run *storage.ScanRun) {
	fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Run"), run.ID)
	fmt.Fprintf(out, "  %s %s\n", subtitleStyle.Render("root:"), run.Root)
	fmt.Fprintf(out, "  %s %d read, %d skipped\n", subtitleStyle.Render("files:"), run.Files, run.Skipped)
}

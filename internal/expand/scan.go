package expand

import (
	"os"

	"github.com/mvp-joe/rescribe/internal/marker"
)

// FileMarker is a marker together with the file it was found in.
type FileMarker struct {
	Path string `json:"path"`
	marker.Marker
}

// ScanReport summarizes a multi-file scan.
type ScanReport struct {
	Files   int          `json:"files"`
	Skipped []string     `json:"skipped,omitempty"`
	Markers []FileMarker `json:"markers"`
}

// ScanProgress receives per-file notifications during ScanFiles.
type ScanProgress interface {
	OnScanStart(totalFiles int)
	OnFileScanned(path string, markers int)
	OnScanComplete(report *ScanReport)
}

// ScanFiles reads each path and records every marker it contains. Unreadable
// files are logged and listed in Skipped. progress may be nil.
func (e *Engine) ScanFiles(paths []string, progress ScanProgress) *ScanReport {
	report := &ScanReport{}
	if progress != nil {
		progress.OnScanStart(len(paths))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			e.logger.Warn("skipping unreadable file", "path", path, "err", err)
			report.Skipped = append(report.Skipped, path)
			if progress != nil {
				progress.OnFileScanned(path, 0)
			}
			continue
		}
		report.Files++

		found := 0
		for m := range e.scanner.Scan(string(data)) {
			report.Markers = append(report.Markers, FileMarker{Path: path, Marker: m})
			found++
		}
		if progress != nil {
			progress.OnFileScanned(path, found)
		}
	}

	if progress != nil {
		progress.OnScanComplete(report)
	}
	return report
}

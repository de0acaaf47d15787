package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/rescribe/internal/expand"
)

// scanProgress draws a progress bar while a scan reads files.
type scanProgress struct {
	out     io.Writer
	quiet   bool
	fileBar *progressbar.ProgressBar
	start   time.Time
}

func newScanProgress(out io.Writer, quiet bool) *scanProgress {
	return &scanProgress{out: out, quiet: quiet}
}

func (p *scanProgress) OnScanStart(totalFiles int) {
	p.start = time.Now()
	if p.quiet {
		return
	}
	p.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.out)
		}),
	)
}

func (p *scanProgress) OnFileScanned(path string, markers int) {
	if p.fileBar != nil {
		p.fileBar.Add(1)
	}
}

func (p *scanProgress) OnScanComplete(report *expand.ScanReport) {
	if p.fileBar != nil {
		p.fileBar.Finish()
		p.fileBar = nil
	}
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "%s %s markers in %s files (%.1fs)\n",
		successStyle.Render("✓ Scan complete:"),
		formatNumber(len(report.Markers)),
		formatNumber(report.Files),
		time.Since(p.start).Seconds())
	if len(report.Skipped) > 0 {
		fmt.Fprintln(p.out, warningStyle.Render(fmt.Sprintf("  %d unreadable files skipped", len(report.Skipped))))
	}
}

// formatNumber adds thousands separators.
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result []byte
	for i := range len(str) {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}
	return string(result)
}

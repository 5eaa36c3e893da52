package deploy

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/newtron-network/gns3lab/pkg/cli"
)

// ProgressReporter receives lifecycle callbacks during a deploy.
type ProgressReporter interface {
	PipelineStart(project string, stages []string)
	StageStart(name string, index, total int)
	StageEnd(name string, err error, duration time.Duration)
	PipelineEnd(results []StageResult, duration time.Duration, err error)
}

type nopProgress struct{}

func (nopProgress) PipelineStart(string, []string)                  {}
func (nopProgress) StageStart(string, int, int)                     {}
func (nopProgress) StageEnd(string, error, time.Duration)           {}
func (nopProgress) PipelineEnd([]StageResult, time.Duration, error) {}

// consoleProgress is an append-only terminal progress reporter.
// It never uses ANSI cursor rewriting, so output is safe for pipes, CI,
// and scrollback buffers.
type consoleProgress struct {
	W io.Writer

	index    int
	total    int
	dotWidth int
}

// NewConsoleProgress creates a consoleProgress writing to stdout.
func NewConsoleProgress() ProgressReporter {
	return &consoleProgress{W: os.Stdout}
}

// NewConsoleProgressTo creates a consoleProgress writing to w.
func NewConsoleProgressTo(w io.Writer) ProgressReporter {
	return &consoleProgress{W: w}
}

func (p *consoleProgress) PipelineStart(project string, stages []string) {
	maxName := 0
	for _, s := range stages {
		if len(s) > maxName {
			maxName = len(s)
		}
	}
	p.dotWidth = maxName + 6
	p.total = len(stages)
	fmt.Fprintf(p.W, "\ngns3lab: deploying %s (%d stages)\n\n", cli.Bold(project), len(stages))
}

func (p *consoleProgress) StageStart(_ string, index, total int) {
	p.index = index
	p.total = total
}

func (p *consoleProgress) StageEnd(name string, err error, duration time.Duration) {
	tag := fmt.Sprintf("[%d/%d]", p.index+1, p.total)
	padded := cli.DotPad(name, p.dotWidth)
	if err != nil {
		fmt.Fprintf(p.W, "  %-7s %s %s  (%s)\n", tag, padded, cli.Red("FAIL"), formatDuration(duration))
		fmt.Fprintf(p.W, "          %s\n", cli.Dim(err.Error()))
		return
	}
	fmt.Fprintf(p.W, "  %-7s %s %s  (%s)\n", tag, padded, cli.Green("OK"), formatDuration(duration))
}

func (p *consoleProgress) PipelineEnd(results []StageResult, duration time.Duration, err error) {
	fmt.Fprintf(p.W, "\n---\n")
	if err != nil {
		fmt.Fprintf(p.W, "gns3lab: %s after %d stages  (%s)\n", cli.Red("aborted"), len(results), formatDuration(duration))
		return
	}
	warned := 0
	for _, r := range results {
		if r.Skipped {
			warned++
		}
	}
	if warned > 0 {
		fmt.Fprintf(p.W, "gns3lab: %s with %s  (%s)\n", cli.Green("deployed"),
			cli.Yellow(fmt.Sprintf("%d stage warnings", warned)), formatDuration(duration))
		return
	}
	fmt.Fprintf(p.W, "gns3lab: %s  (%s)\n", cli.Green("deployed"), formatDuration(duration))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%02ds", m, s)
}

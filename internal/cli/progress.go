package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// reporter gives feedback while a batch of documents is outlined.
type reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// newReporter returns a progress bar on interactive runs and line output
// when CI is set. Single documents get no progress output.
func newReporter(w io.Writer, total int) reporter {
	switch {
	case total < 2:
		return nopReporter{}
	case os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "":
		return &lineReporter{w: w}
	}
	return &barReporter{w: w}
}

type barReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (r *barReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription("Outlining"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *barReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *barReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

type lineReporter struct {
	w     io.Writer
	total int
}

func (r *lineReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.w, "Outlining %d documents\n", total)
}

func (r *lineReporter) Update(current int, message string) {
	fmt.Fprintf(r.w, "[%d/%d] %s\n", current, r.total, message)
}

func (r *lineReporter) Finish() {
	fmt.Fprintln(r.w, "Outlining complete")
}

type nopReporter struct{}

func (nopReporter) Start(int)          {}
func (nopReporter) Update(int, string) {}
func (nopReporter) Finish()            {}

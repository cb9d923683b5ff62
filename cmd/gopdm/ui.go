package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/reoring/gopdm"
)

// ui prints command results and diagnostics.
type ui struct {
	out, errOut io.Writer
	ok          *color.Color
	bad         *color.Color
	warn        *color.Color
	head        *color.Color
	dim         *color.Color
}

func newUI(out, errOut io.Writer, noColor bool) *ui {
	u := &ui{
		out:    out,
		errOut: errOut,
		ok:     color.New(color.FgGreen),
		bad:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow),
		head:   color.New(color.FgCyan, color.Bold),
		dim:    color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{u.ok, u.bad, u.warn, u.head, u.dim} {
			c.DisableColor()
		}
	}
	return u
}

func (u *ui) success(format string, args ...any) {
	u.ok.Fprint(u.out, "✓ ")
	fmt.Fprintf(u.out, format+"\n", args...)
}

// failure prints err. Issues are listed one per line with their location.
func (u *ui) failure(subject string, err error) {
	u.bad.Fprintf(u.errOut, "✗ %s\n", subject)
	iss, ok := gopdm.AsIssues(err)
	if !ok {
		fmt.Fprintf(u.errOut, "   %v\n", err)
		return
	}
	for _, it := range iss {
		c := u.bad
		if it.Severity < gopdm.Error {
			c = u.warn
		}
		c.Fprintf(u.errOut, "   %s ", it.Code)
		u.dim.Fprintf(u.errOut, "at %s", it.Path)
		fmt.Fprintf(u.errOut, ": %s\n", it.Message)
		if it.Hint != "" {
			u.dim.Fprintf(u.errOut, "     → %s\n", it.Hint)
		}
	}
}

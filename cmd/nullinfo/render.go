package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/broady/nullinfo"
	"github.com/broady/nullinfo/meta"
)

// colorEnabled reports whether text output to w should be colorized.
// In auto mode that means w is a terminal and NO_COLOR is unset.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type palette struct {
	member   *color.Color
	label    *color.Color
	nullable *color.Color
	notNull  *color.Color
	unknown  *color.Color
	warning  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		member:   color.New(color.Bold),
		label:    color.New(color.FgCyan),
		nullable: color.New(color.FgYellow, color.Bold),
		notNull:  color.New(color.FgGreen),
		unknown:  color.New(color.Faint),
		warning:  color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.member, p.label, p.nullable, p.notNull, p.unknown, p.warning} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) state(s nullinfo.State) string {
	switch s {
	case nullinfo.Nullable:
		return p.nullable.Sprint(s)
	case nullinfo.NotNull:
		return p.notNull.Sprint(s)
	default:
		return p.unknown.Sprint(s)
	}
}

// renderText writes one block per report:
//
//	Repo.TryGet (method)
//	  returns
//	    Boolean: notnull
//	  param key
//	    String: notnull
func renderText(w io.Writer, reports []Report, colorize bool) error {
	p := newPalette(colorize)
	var sb strings.Builder
	for _, rep := range reports {
		fmt.Fprintf(&sb, "%s (%s)\n", p.member.Sprint(rep.Member), rep.Kind)
		if rep.Kind != meta.MemberMethod.String() {
			writeTree(&sb, rep.Info, "  ", p)
		} else {
			fmt.Fprintf(&sb, "  %s\n", p.label.Sprint("returns"))
			writeTree(&sb, rep.Info, "    ", p)
			for _, param := range rep.Parameters {
				fmt.Fprintf(&sb, "  %s %s\n", p.label.Sprint("param"), param.Name)
				writeTree(&sb, param.Info, "    ", p)
			}
		}
		for _, warn := range rep.Warnings {
			fmt.Fprintf(&sb, "  %s %s\n", p.warning.Sprint("warning:"), warn)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeTree(sb *strings.Builder, info *nullinfo.Info, indent string, p palette) {
	info.Walk(func(depth int, n *nullinfo.Info) bool {
		sb.WriteString(indent)
		sb.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(sb, "%s: %s", meta.Format(n.Type), p.state(n.ReadState))
		if n.Truncated {
			sb.WriteString(" " + p.warning.Sprint("(truncated)"))
		}
		sb.WriteByte('\n')
		return true
	})
}

// renderJSON writes reports as an indented JSON array.
func renderJSON(w io.Writer, reports []Report) error {
	if reports == nil {
		reports = []Report{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

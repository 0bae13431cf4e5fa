package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
)

// printer writes command results as a table on a terminal and as JSON
// everywhere else.
type printer struct {
	out    io.Writer
	asJSON bool
}

func (st *state) printer(cmd *cobra.Command) printer {
	out := cmd.OutOrStdout()

	return printer{
		out:    out,
		asJSON: st.v.GetBool("json") || !isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// emit prints v as JSON, or calls table with a tab-aligned writer.
func (p printer) emit(v any, table func(w io.Writer)) error {
	if p.asJSON {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	table(tw)

	return tw.Flush()
}

// message prints a one-line confirmation, or v in JSON mode.
func (p printer) message(v any, format string, args ...any) error {
	return p.emit(v, func(w io.Writer) {
		fmt.Fprintf(w, format+"\n", args...)
	})
}

func row(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

// configTable prints the options of cfg in key order.
func configTable(w io.Writer, cfg dungeon.Config) {
	row(w, "OPTION", "VALUE")
	for _, key := range cfg.Keys() {
		row(w, key, formatValue(cfg[key]))
	}
}

func formatValue(v any) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		data, jerr := json.Marshal(v)
		if jerr != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
	if s == "" {
		return `""`
	}

	return s
}

// parseAssignments turns opt=value arguments into raw option values.
func parseAssignments(args []string) (map[string]string, error) {
	raw := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("expected option=value, got %q", arg)
		}
		raw[strings.TrimSpace(key)] = value
	}

	return raw, nil
}

// parseConfig coerces and validates opt=value arguments.
func parseConfig(args []string) (dungeon.Config, error) {
	raw, err := parseAssignments(args)
	if err != nil {
		return nil, err
	}

	cfg, err := dungeon.Coerce(raw)
	if err != nil {
		return nil, err
	}
	if err := dungeon.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

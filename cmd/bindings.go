package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-ioc/framework/container"
)

var bindingsFormat string

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "List the container's registrations",
	Long: `List every registration the framework providers make, in registration
order.

Examples:
  go-ioc bindings
  go-ioc bindings --format json | jq '.[].service'
  go-ioc bindings -f yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		defer func() { _ = application.Shutdown() }()

		return writeBindings(cmd.OutOrStdout(), bindingsFormat, application.Registrations())
	},
}

func init() {
	bindingsCmd.Flags().StringVarP(&bindingsFormat, "format", "f", "table",
		"output format: table, json or yaml")
	rootCmd.AddCommand(bindingsCmd)
}

func writeBindings(w io.Writer, format string, regs []container.Registration) error {
	switch strings.ToLower(format) {
	case "table":
		return writeTable(w, regs)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(regs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(regs); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

var (
	headerColor    = color.New(color.Bold)
	singletonColor = color.New(color.FgCyan)
	transientColor = color.New(color.FgGreen)
)

// writeTable aligns columns first and colors whole lines afterwards, so
// escape codes never skew the column widths.
func writeTable(w io.Writer, regs []container.Registration) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSERVICE\tSTRATEGY\tLIFECYCLE")
	for _, r := range regs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Index, r.Service, r.Kind, r.Lifecycle)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	sc := bufio.NewScanner(&buf)
	for i := 0; sc.Scan(); i++ {
		line := sc.Text()
		switch {
		case i == 0:
			line = headerColor.Sprint(line)
		case regs[i-1].Lifecycle == container.Singleton:
			line = singletonColor.Sprint(line)
		default:
			line = transientColor.Sprint(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

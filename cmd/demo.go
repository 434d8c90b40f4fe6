package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/logging"
	"github.com/km-arc/go-ioc/internal/sample"
)

var demoVerbose bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Resolve a sample service graph and show what the container did",
	Long: `Register IA (factory), IB (constructor) and IC (fixed instance), resolve
IA twice with IB transient and then singleton, and show which instances
were shared. Finishes with a rejected dependency cycle.

Use --verbose to see the container's debug log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.NewNop()
		if demoVerbose {
			var err error
			logger, err = logging.New(config.LogConfig{Level: "debug", Format: "console"})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
		}

		out := cmd.OutOrStdout()
		for _, lb := range []container.Lifecycle{container.Transient, container.Singleton} {
			if err := demoGraph(out, logger, lb); err != nil {
				return err
			}
		}
		return demoCycle(out, logger)
	},
}

func init() {
	demoCmd.Flags().BoolVarP(&demoVerbose, "verbose", "v", false, "print the container's debug log")
	rootCmd.AddCommand(demoCmd)
}

var (
	titleColor = color.New(color.Bold, color.Underline)
	yesColor   = color.New(color.FgGreen)
	noColor    = color.New(color.FgYellow)
)

func yesNo(b bool) string {
	if b {
		return yesColor.Sprint("yes")
	}
	return noColor.Sprint("no")
}

func demoGraph(out io.Writer, logger *zap.Logger, lb container.Lifecycle) error {
	c := container.New(container.WithLogger(logger))
	if err := sample.Register(c, lb); err != nil {
		return err
	}

	a1, err := container.Resolve[sample.IA](c)
	if err != nil {
		return err
	}
	a2, err := container.Resolve[sample.IA](c)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, titleColor.Sprintf("IB %s", lb))
	fmt.Fprintf(out, "  first  IA -> IB %s, IC %q\n", a1.B().ID(), a1.C().Label())
	fmt.Fprintf(out, "  second IA -> IB %s, IC %q\n", a2.B().ID(), a2.C().Label())
	fmt.Fprintf(out, "  IA shared: %s\n", yesNo(a1 == a2))
	fmt.Fprintf(out, "  IB shared: %s\n", yesNo(a1.B() == a2.B()))
	fmt.Fprintf(out, "  IC shared: %s\n", yesNo(a1.C() == a2.C()))

	if err := c.Dispose(); err != nil {
		return err
	}
	b1, _ := a1.B().(*sample.B)
	b2, _ := a2.B().(*sample.B)
	fmt.Fprintf(out, "  IB disposed: %s\n\n", yesNo(b1.Disposed && b2.Disposed))
	return nil
}

type (
	demoX interface{}
	demoY interface{}
)

func demoCycle(out io.Writer, logger *zap.Logger) error {
	c := container.New(container.WithLogger(logger))
	c.BindType(container.KeyOf[demoX](), func(y demoY) demoX { return y })
	c.BindType(container.KeyOf[demoY](), func(x demoX) demoY { return x })

	fmt.Fprintln(out, titleColor.Sprint("cycle"))
	_, err := c.Resolve(container.KeyOf[demoX]())
	var cycle *container.CyclicDependencyError
	if !errors.As(err, &cycle) {
		return fmt.Errorf("expected a cyclic dependency error, got %v", err)
	}
	fmt.Fprintf(out, "  rejected: %s\n", cycle.Path())
	return nil
}

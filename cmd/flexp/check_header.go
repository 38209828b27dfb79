package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"flexp/csvfile"
)

func (a *app) newCheckHeaderCmd() *cobra.Command {
	var columns []string
	cmd := &cobra.Command{
		Use:   "check-header FILE",
		Short: "Check that a results file has the expected columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheckHeader(cmd.OutOrStdout(), args[0], columns)
		},
	}
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "expected columns, in order")
	cmd.MarkFlagRequired("columns")
	return cmd
}

func (a *app) runCheckHeader(out io.Writer, path string, columns []string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := csvfile.ValidateHeader(header, columns); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	a.log.Debug("header ok", "file", path, "columns", columns)
	fmt.Fprintf(out, "%s: header ok\n", path)
	return nil
}

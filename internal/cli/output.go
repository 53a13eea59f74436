package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pierre-ernst/ghnet/pkg/api"
	"github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/report"
)

// outputFlags are shared by the commands that print a result.
type outputFlags struct {
	format string
	output string
}

func addOutputFlags(cmd *cobra.Command, f *outputFlags) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "table", "output format: table, json or toml")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write to file instead of stdout")
}

// write renders v in the requested format to stdout or the output file.
func (f *outputFlags) write(v any) error {
	format, err := report.ParseFormat(f.format)
	if err != nil {
		return err
	}
	return writeTo(f.output, func(w io.Writer) error {
		return report.Write(w, format, v)
	})
}

// writeTo calls fn with stdout when path is empty, or with a created file.
func writeTo(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// ErrorMessage returns the text shown to the user for a failed command,
// with a hint for the errors a user can act on.
func ErrorMessage(err error) string {
	e := api.Classify(err)
	msg := errors.UserMessage(e)
	switch e.Code {
	case errors.ErrCodeRateLimited:
		return msg + "\nhint: set GITHUB_TOKEN or lower scan.rate to stay under GitHub's limits"
	case errors.ErrCodeLayoutChanged:
		return msg + "\nhint: GitHub changed its dependents page; try --refresh, then report it"
	case errors.ErrCodeNotFound:
		return msg + "\nhint: private repositories need a token with repo scope"
	}
	return msg
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core/attendance"
)

// recap writes the export of a recap to out, or to its export file name.
func (cli *commandLine) recap(ctx context.Context, q attendance.RecapQuery, format, out string) error {
	if format != "xlsx" && format != "pdf" {
		return errors.Errorf("unknown format %q: use xlsx or pdf", format)
	}
	report, err := cli.attendance.Report(ctx, q)
	if err != nil {
		return err
	}

	var content []byte
	if format == "pdf" {
		content, err = cli.renderer.RenderPDF(report)
	} else {
		content, err = cli.renderer.RenderXLSX(report)
	}
	if err != nil {
		return errors.Wrapf(err, "rendering %s", format)
	}

	if out == "" {
		out = report.FileName(format)
	}
	if err = os.WriteFile(out, content, 0o644); err != nil {
		return errors.Wrap(err, "writing export")
	}
	fmt.Fprintf(cli.out, "%s: %d students written to %s\n", report.Title, len(report.Table)-3, out)
	return nil
}

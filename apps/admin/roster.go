package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/roster"
	"github.com/trezcool/absensi/services/export"
)

func (cli *commandLine) classes(ctx context.Context) error {
	classes, err := cli.attendance.Classes(ctx)
	if err != nil {
		return err
	}
	for _, c := range classes {
		fmt.Fprintln(cli.out, c)
	}
	return nil
}

// students prints the matching students as NISN, class and name columns.
// When a name matches nobody, the closest roster names are suggested.
func (cli *commandLine) students(ctx context.Context, f roster.QueryFilter) error {
	students, err := cli.roster.Filter(ctx, f)
	if err != nil {
		return err
	}
	for _, s := range students {
		fmt.Fprintf(cli.out, "%-12s %-6s %s\n", s.NISN.String, s.Class.String, s.Name.String)
	}
	if len(students) > 0 || core.CleanString(f.Name) == "" {
		return nil
	}

	all, err := cli.roster.List(ctx)
	if err != nil {
		return err
	}
	if suggestions := roster.SuggestNames(all, f.Name, 3); len(suggestions) > 0 {
		fmt.Fprintf(cli.out, "no student named %q; did you mean: %s?\n", f.Name, strings.Join(suggestions, ", "))
	} else {
		fmt.Fprintf(cli.out, "no student named %q\n", f.Name)
	}
	return nil
}

func (cli *commandLine) importRoster(ctx context.Context, path, class string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening import file")
	}
	defer f.Close()

	bs, err := exportsvc.ParseRoster(f, class)
	if err != nil {
		return err
	}
	if err = bs.Validate(cli.attendance.Validate); err != nil {
		return err
	}
	n, dlv, err := cli.roster.BulkAdd(ctx, bs)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d students sent (%s)\n", n, deliveryText(dlv))
	return nil
}

func deliveryText(dlv core.Delivery) string {
	if dlv == core.DeliveryConfirmed {
		return "confirmed"
	}
	return "not confirmed by the remote endpoint"
}

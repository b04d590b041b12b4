package main

import (
	"context"
	"fmt"

	"github.com/trezcool/absensi/core"
)

// purge clears the attendance sheet, or every student and attendance record with the
// local data when scope is "all".
func (cli *commandLine) purge(ctx context.Context, scope string, yes bool) error {
	if !yes {
		question := "Clear every attendance record?"
		if scope == "all" {
			question = "Delete every student and attendance record?"
		}
		ok, err := confirmFunc(question)
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	}

	var (
		dlv core.Delivery
		err error
	)
	if scope == "all" {
		dlv, err = cli.attendance.DeleteAllData(ctx)
	} else {
		dlv, err = cli.attendance.ClearAttendance(ctx, "")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "purge %s: %s\n", scope, deliveryText(dlv))
	return nil
}

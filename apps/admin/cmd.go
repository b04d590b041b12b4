package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/attendance"
	"github.com/trezcool/absensi/core/roster"
)

var (
	confirmFunc = confirm // mockable

	errHelp    = errors.New("help provided")
	errAborted = errors.New("aborted")
)

type commandLine struct {
	conf       *core.Config
	roster     roster.ServiceInterface
	attendance *attendance.Service
	renderer   attendance.Renderer
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  classes                                   - list the classes of the roster")
	fmt.Fprintln(cli.out, "  students [-kelas CLASS] [-nama NAME]      - list students, suggesting close names")
	fmt.Fprintln(cli.out, "  import -file FILE.xlsx [-kelas CLASS]     - add the students of a spreadsheet")
	fmt.Fprintln(cli.out, "  recap -period monthly|semester [-kelas CLASS] [-bulan MONTH] [-semester 1|2] [-format xlsx|pdf] [-out FILE]")
	fmt.Fprintln(cli.out, "                                            - export a recap")
	fmt.Fprintln(cli.out, "  purge -scope attendance|all [-yes]        - delete remote attendance or all remote data")
	fmt.Fprintln(cli.out, "  migrate up|down|version                   - manage the postgres store schema")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	studentsCmd := flag.NewFlagSet("students", flag.ContinueOnError)
	studentsClass := studentsCmd.String("kelas", "", "Only list this class.")
	studentsName := studentsCmd.String("nama", "", "Only list names containing this text.")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importFile := importCmd.String("file", "", "The xlsx file to import (header: Nama, NISN and optionally Kelas).")
	importClass := importCmd.String("kelas", "", "The class of the rows without one.")

	recapCmd := flag.NewFlagSet("recap", flag.ContinueOnError)
	recapPeriod := recapCmd.String("period", string(attendance.Monthly), "monthly or semester.")
	recapClass := recapCmd.String("kelas", attendance.All, "The class to export.")
	recapMonth := recapCmd.String("bulan", "", "The month (1-12 or its name) of a monthly recap.")
	recapSemester := recapCmd.Int("semester", 0, "The semester (1 or 2) of a semester recap.")
	recapFormat := recapCmd.String("format", "xlsx", "xlsx or pdf.")
	recapOut := recapCmd.String("out", "", "The output file. Defaults to the export file name.")

	purgeCmd := flag.NewFlagSet("purge", flag.ContinueOnError)
	purgeScope := purgeCmd.String("scope", "", "attendance: clear the attendance sheet; all: delete students and attendance.")
	purgeYes := purgeCmd.Bool("yes", false, "Do not ask for confirmation.")

	for _, fs := range []*flag.FlagSet{studentsCmd, importCmd, recapCmd, purgeCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "classes":
		return cli.classes(ctx)

	case "students":
		if err := studentsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.students(ctx, roster.QueryFilter{Class: *studentsClass, Name: *studentsName})

	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importRoster(ctx, *importFile, *importClass)

	case "recap":
		if err := recapCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		q := attendance.RecapQuery{
			Period:   attendance.Period(*recapPeriod),
			Class:    *recapClass,
			Month:    *recapMonth,
			Semester: *recapSemester,
		}
		return cli.recap(ctx, q, *recapFormat, *recapOut)

	case "purge":
		if err := purgeCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *purgeScope != "attendance" && *purgeScope != "all" {
			purgeCmd.Usage()
			return errHelp
		}
		return cli.purge(ctx, *purgeScope, *purgeYes)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2])

	default:
		cli.printUsage()
		return errHelp
	}
}

// confirm asks a yes/no question on the terminal. Anything but "y" or "yes" is a no.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("not a terminal: use -yes to confirm")
	}
	fmt.Printf("%s [y/N] ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

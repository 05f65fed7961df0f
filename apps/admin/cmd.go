package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/trezcool/masomo-finance/core"
	"github.com/trezcool/masomo-finance/core/finance"
)

var (
	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf    *core.Config
	db      *sql.DB
	board   *finance.Board
	mailSvc core.EmailService
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) against the database")
	fmt.Println("  report [-teacher ID] [-student ID] [-to EMAIL[,EMAIL]] - email the finance report")
	fmt.Println("  plans - list the plan catalog")
}

func (cli *commandLine) stdout() io.Writer {
	if cli.out != nil {
		return cli.out
	}
	return os.Stdout
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportTeacher := reportCmd.String("teacher", finance.All, "Teacher id, or \"all\".")
	reportStudent := reportCmd.String("student", finance.All, "Student id, or \"all\".")
	reportTo := reportCmd.String("to", "", "Comma separated recipients. Defaults to the configured report recipients.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.report(finance.NewSelector(*reportTeacher, *reportStudent), *reportTo)
	case "plans":
		return cli.plans()
	default:
		cli.printUsage()
		return errHelp
	}
}

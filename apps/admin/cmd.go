package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/content"
	"github.com/trezcool/boletin/core/roster"
)

var (
	errHelp = errors.New("help provided")

	// cliCaller is who the admin CLI acts as
	cliCaller = core.Caller{Username: "admin-cli", Roles: []string{core.RoleAdmin}}
)

type commandLine struct {
	db         *sql.DB
	conf       *core.Config
	contentSvc *content.Service
	rosterSvc  *roster.Service
	mailSvc    core.EmailService
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]              - run goose migration commands (up, down, status...)")
	_, _ = fmt.Fprintln(cli.out, "  period -date YYYY-MM-DD [-year N]   - resolve the bimester of a date")
	_, _ = fmt.Fprintln(cli.out, "  audit -subject ID [-notify]         - list orphaned assignments of a subject-course")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	periodCmd := flag.NewFlagSet("period", flag.ContinueOnError)
	periodCmd.SetOutput(cli.out)
	periodDate := periodCmd.String("date", "", "The date to resolve, formatted as YYYY-MM-DD.")
	periodYear := periodCmd.Int("year", 0, "The cycle year. Defaults to the active cycle's.")

	auditCmd := flag.NewFlagSet("audit", flag.ContinueOnError)
	auditCmd.SetOutput(cli.out)
	auditSubject := auditCmd.String("subject", "", "The subject-course ID.")
	auditNotify := auditCmd.Bool("notify", false, "Email the report to the audit recipients.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "period":
		if err := periodCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *periodDate == "" {
			periodCmd.Usage()
			return errHelp
		}
		return cli.resolvePeriod(*periodDate, *periodYear)
	case "audit":
		if err := auditCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *auditSubject == "" {
			auditCmd.Usage()
			return errHelp
		}
		return cli.audit(*auditSubject, *auditNotify)
	default:
		cli.printUsage()
		return errHelp
	}
}

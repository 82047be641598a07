package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/LukaszKielczewski66/fightclub/core/account"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sqlx.DB // nil for mongo
	accSvc    *account.Service
	validate  *validator.Validate
	secretKey string
	appName   string
	tokenTTL  time.Duration
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...]                            - run a goose command against the SQL database")
	fmt.Fprintln(cli.out, "  addaccount -name NAME -email EMAIL -role ROLE [-inactive] - create or update an account")
	fmt.Fprintln(cli.out, "  token -email EMAIL [-ttl DURATION]                   - print a bearer token for an account")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAccountCmd := flag.NewFlagSet("addaccount", flag.ContinueOnError)
	addAccountCmd.SetOutput(cli.out)
	addAccountName := addAccountCmd.String("name", "", "The account's display name")
	addAccountEmail := addAccountCmd.String("email", "", "The account's email. An existing account with this email is updated.")
	addAccountRole := addAccountCmd.String("role", "", "One of admin, trainer, member")
	addAccountInactive := addAccountCmd.Bool("inactive", false, "Create the account deactivated")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenEmail := tokenCmd.String("email", "", "The account's email")
	tokenTTL := tokenCmd.Duration("ttl", cli.tokenTTL, "Token lifetime")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addaccount":
		if err := addAccountCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAccountName == "" || *addAccountEmail == "" || *addAccountRole == "" {
			addAccountCmd.Usage()
			return errHelp
		}
		return cli.addAccount(*addAccountName, *addAccountEmail, *addAccountRole, *addAccountInactive)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenEmail, *tokenTTL)
	default:
		cli.printUsage()
		return errHelp
	}
}

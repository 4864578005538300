package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/nexuslms/nexus/core/user"
)

var errHelp = errors.New("help provided")

type resetter interface {
	Reset(ctx context.Context) error
}

type commandLine struct {
	usrSvc      user.ServiceInterface
	resetter    resetter
	migrateFunc func() error
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -name NAME -email EMAIL [-role ROLE] - create or update a user")
	fmt.Println("  reset                                        - restore the seed dataset")
	fmt.Println("  migrate                                      - apply pending database migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email address.")
	addUserRole := addUserCmd.String("role", user.RoleStudent,
		"One of "+strings.Join(user.AllRoles, ", ")+".")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, *addUserRole)
	case "reset":
		return cli.resetter.Reset(context.Background())
	case "migrate":
		return cli.migrateFunc()
	default:
		cli.printUsage()
		return errHelp
	}
}

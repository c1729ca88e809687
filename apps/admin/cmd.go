package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/hoshiyaar/paathshala/core"
	"github.com/hoshiyaar/paathshala/core/curriculum"
	"github.com/hoshiyaar/paathshala/core/learner"
	"github.com/hoshiyaar/paathshala/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	db         *gorm.DB
	currSvc    *curriculum.Service
	learnerSvc *learner.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate                      - bring the database schema up to date")
	fmt.Println("  seed                         - ensure the default board/class/subject exist")
	fmt.Println("  addadmin -username USERNAME  - create an admin account (password prompted next)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminUname := addAdminCmd.String("username", "", "The admin's username. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		return cli.migrate()
	case "seed":
		return cli.seed()
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminUname == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addAdminUname, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate() error {
	if err := database.Migrate(cli.db); err != nil {
		return err
	}
	logger.Println("schema up to date")
	return nil
}

// seed ensures the configured default hierarchy exists so that imports and
// onboarding have something to resolve against on a fresh database.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	res, err := cli.currSvc.BackfillSubjects(ctx, "", "", "")
	if err != nil {
		return err
	}
	logger.Printf("seeded %s / %s / %s (%d chapters adopted)\n", res.Board, res.Class, res.Subject, res.UpdatedChapters)
	return nil
}

func (cli *commandLine) addAdmin(uname, pwd string) error {
	l, err := cli.learnerSvc.RegisterAdmin(context.Background(), uname, pwd)
	if err != nil {
		return err
	}
	logger.Printf("admin %q created (%s)\n", l.Username, l.ID)
	return nil
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	openFileFunc     = func(name string) (io.ReadCloser, error) { return os.Open(name) }

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db            *sqlx.DB
	profileSvc    *profile.Service
	assessmentSvc *assessment.Service
	validate      *validator.Validate
	logger        core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Println("  addprofile -name NAME -username USERNAME -email EMAIL -role ROLE - add a profile, or update the matching one")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset a profile's password")
	fmt.Println("  importquestions -file FILE.csv -as USERNAME|EMAIL - add the questions of a CSV file to the bank")
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addProfileCmd := flag.NewFlagSet("addprofile", flag.ContinueOnError)
	addProfileName := addProfileCmd.String("name", "", "The profile's full name.")
	addProfileUname := addProfileCmd.String("username", "", "The profile's username.")
	addProfileEmail := addProfileCmd.String("email", "", "The profile's email.")
	addProfileRole := addProfileCmd.String("role", profile.RoleAdmin, "The profile's role.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The profile's username or email. The password will be prompted next.")

	importQuestionsCmd := flag.NewFlagSet("importquestions", flag.ContinueOnError)
	importQuestionsFile := importQuestionsCmd.String("file", "", "Path of the CSV file.")
	importQuestionsAs := importQuestionsCmd.String("as", "", "Username or email of the reviewer the questions are created by.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "addprofile":
		if err := addProfileCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addProfileUname == "" && *addProfileEmail == "" {
			addProfileCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addProfileCmd.Usage()
			return errHelp
		}
		return cli.addProfile(*addProfileName, *addProfileUname, *addProfileEmail, *addProfileRole, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "importquestions":
		if err := importQuestionsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *importQuestionsFile == "" || *importQuestionsAs == "" {
			importQuestionsCmd.Usage()
			return errHelp
		}
		f, err := openFileFunc(*importQuestionsFile)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		n, err := cli.importQuestions(f, *importQuestionsAs)
		if err != nil {
			return err
		}
		cli.logger.Info(fmt.Sprintf("%d question(s) imported", n))
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/aulaproject/aula/core/course"
	"github.com/aulaproject/aula/storage/database"
)

var (
	readFileFunc = os.ReadFile // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *database.AppDB
	courseSvc *course.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run a database migration command (up, down, status, ...)")
	fmt.Println("  importenrollments -subject CODE -file PATH - bulk-enroll students from a CSV file")
	fmt.Println("  importresults -subject CODE -file PATH - bulk-load exercise results from a CSV file")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importEnrCmd := flag.NewFlagSet("importenrollments", flag.ExitOnError)
	importEnrSubj := importEnrCmd.String("subject", "", "The subject's code.")
	importEnrFile := importEnrCmd.String("file", "", "Path to the CSV file. An `email` column is required.")

	importResCmd := flag.NewFlagSet("importresults", flag.ExitOnError)
	importResSubj := importResCmd.String("subject", "", "The subject's code.")
	importResFile := importResCmd.String("file", "", "Path to the CSV file. `student_email`, `exercise_name` and `status` columns are required.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "importenrollments":
		if err := importEnrCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importEnrSubj == "" || *importEnrFile == "" {
			importEnrCmd.Usage()
			return errHelp
		}
		return cli.importEnrollments(*importEnrSubj, *importEnrFile)
	case "importresults":
		if err := importResCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importResSubj == "" || *importResFile == "" {
			importResCmd.Usage()
			return errHelp
		}
		return cli.importResults(*importResSubj, *importResFile)
	default:
		cli.printUsage()
		return errHelp
	}
}

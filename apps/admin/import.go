package main

import (
	"context"

	"github.com/aulaproject/aula/core/course"
)

func (cli *commandLine) importEnrollments(subjCode, path string) error {
	ctx := context.Background()

	subj, err := cli.courseSvc.GetSubjectByCode(ctx, subjCode)
	if err != nil {
		return err
	}
	data, err := readFileFunc(path)
	if err != nil {
		return err
	}

	sum, err := cli.courseSvc.ImportEnrollments(ctx, subj, data)
	if err != nil {
		return err
	}

	logger.Printf("created: %d, existed: %d", sum.Created, sum.Existed)
	logRowErrors(sum.Errors)
	return nil
}

func (cli *commandLine) importResults(subjCode, path string) error {
	ctx := context.Background()

	subj, err := cli.courseSvc.GetSubjectByCode(ctx, subjCode)
	if err != nil {
		return err
	}
	data, err := readFileFunc(path)
	if err != nil {
		return err
	}

	sum, err := cli.courseSvc.ImportResults(ctx, subj, data)
	if err != nil {
		return err
	}

	logger.Printf("created: %d, updated: %d, skipped: %d", sum.Created, sum.Updated, sum.Skipped)
	logRowErrors(sum.Errors)
	return nil
}

func logRowErrors(rowErrs []course.RowError) {
	if len(rowErrs) == 0 {
		return
	}
	logger.Printf("%d row(s) in error:", len(rowErrs))
	for _, rowErr := range rowErrs {
		logger.Printf("  row %d: %s", rowErr.Row, rowErr.Error)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/repository"
	"github.com/noah-isme/oppia-go-api/internal/service"
)

func newUserProfileFixCommand() *cobra.Command {
	var filepath string

	cmd := &cobra.Command{
		Use:   "user-profile-fix",
		Short: "Fill empty profile fields and custom fields from a CSV or xlsx export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			return runUserProfileFix(cmd, db, filepath)
		},
	}

	cmd.Flags().StringVar(&filepath, "filepath", "", "path to the .csv or .xlsx file of username-keyed rows")
	_ = cmd.MarkFlagRequired("filepath")
	return cmd
}

func runUserProfileFix(cmd *cobra.Command, db *gorm.DB, path string) error {
	rows, err := service.ReadProfileRows(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	logger := commandLogger(cmd)
	recovery := service.NewDataRecoveryService(repository.NewDataRecoveryRepository(db), validator.New(), logger)
	backfill := service.NewProfileBackfillService(
		repository.NewUserRepository(db),
		repository.NewCustomFieldRepository(db),
		recovery,
		logger,
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	report, err := backfill.Run(ctx, rows, out)
	if err != nil {
		return err
	}

	printReport(out, report)
	return nil
}

func printReport(out io.Writer, report service.BackfillReport) {
	fmt.Fprintf(out, "rows processed: %d\n", report.Rows)
	fmt.Fprintf(out, "users not found: %d\n", report.UnknownUsers)
	fmt.Fprintf(out, "phone numbers set: %d\n", report.PhoneNumbers)
	fmt.Fprintf(out, "custom fields created: %d\n", report.FieldsCreated)
	fmt.Fprintf(out, "custom fields updated: %d\n", report.FieldsUpdated)
	fmt.Fprintf(out, "participant ids padded: %d\n", report.Padded)
	if len(report.Errors) > 0 {
		fmt.Fprintf(out, "errors:\n  %s\n", strings.Join(report.Errors, "\n  "))
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/FormDrop/internal/database"
	"github.com/dharsanguruparan/FormDrop/internal/form"
	pdfutil "github.com/dharsanguruparan/FormDrop/internal/pdf"
	"github.com/dharsanguruparan/FormDrop/internal/server"
	"github.com/dharsanguruparan/FormDrop/internal/shell"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List the job titles candidates can apply for",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := wire(ctx)
			if err != nil {
				return err
			}
			defer d.Close()
			out := cmd.OutOrStdout()
			sh := shell.New(shell.ViewJobApplication, func(n form.Notification) {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", n.Level, n.Message)
			})
			for _, title := range form.FetchJobTitles(ctx, d.Titles, sh) {
				fmt.Fprintln(out, title)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <title>",
		Short: "Add a job title to the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := wire(ctx)
			if err != nil {
				return err
			}
			defer d.Close()
			if d.Repo == nil {
				return errors.New("no database configured (set FORMDROP_DATABASE_URL)")
			}
			return d.Repo.Add(ctx, args[0])
		},
	})
	return cmd
}

func newInspectCmd() *cobra.Command {
	var chars int
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the detected type of an attachment and, for PDFs, a text excerpt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			mt := mimetype.Detect(data)
			fmt.Fprintf(out, "%s: %s, %d bytes\n", args[0], mt.String(), len(data))
			if !mt.Is("application/pdf") {
				return nil
			}
			s, err := pdfutil.Summarize(data, chars)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "pages: %d\n%s\n", s.Pages, s.Excerpt)
			return nil
		},
	}
	cmd.Flags().IntVar(&chars, "chars", 400, "Maximum excerpt length (0 for all text)")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server (and the /n8n dev proxy in dev)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := wire(ctx)
			if err != nil {
				return err
			}
			defer d.Close()
			return server.New(d.Config, d.Titles, d.Submitter, d.Log).Serve(ctx)
		},
	}
}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the Company table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := wire(ctx)
			if err != nil {
				return err
			}
			defer d.Close()
			if d.Pool == nil {
				return errors.New("no database configured (set FORMDROP_DATABASE_URL)")
			}
			return database.EnsureSchema(ctx, d.Pool)
		},
	})
	return cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/FormDrop/internal/app"
	"github.com/dharsanguruparan/FormDrop/internal/form"
	pdfutil "github.com/dharsanguruparan/FormDrop/internal/pdf"
	"github.com/dharsanguruparan/FormDrop/internal/s3storage"
	"github.com/dharsanguruparan/FormDrop/internal/shell"
)

// errNotSent makes the process exit non-zero when a submission did not succeed.
var errNotSent = errors.New("form not sent")

func newSubmitCmd() *cobra.Command {
	var (
		fields []string
		files  []string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "submit <contact|job-application|job-posting>",
		Short: "Validate and submit one form",
		Example: `  formdrop submit contact --field full_name="Jo Bloggs" --field message="Hello there"
  formdrop submit job-application --field job_title="Backend Engineer" --file cv=./cv.pdf
  formdrop submit job-application --file cv=s3://candidates/jo.pdf --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := form.ParseType(args[0])
			if err != nil {
				return err
			}
			d, err := wire(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			out := cmd.OutOrStdout()
			sh := shell.New(shell.ViewFor(t), func(n form.Notification) {
				fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Message)
			})
			var titles []string
			if t == form.JobApplication {
				titles = form.FetchJobTitles(ctx, d.Titles, sh)
			}
			def, err := form.Lookup(t, titles)
			if err != nil {
				return err
			}
			values, err := collectFields(ctx, d, fields, files)
			if err != nil {
				return err
			}
			if dryRun {
				return preview(out, d, def, values)
			}

			endpoint, err := d.Config.Endpoint(t)
			if err != nil {
				// Field errors come first; they do not depend on the endpoint.
				if errs := form.Validate(values, def.Schema); errs.HasErrors() {
					printErrors(out, errs)
					return errNotSent
				}
				return err
			}
			ctrl := form.NewController(def, endpoint, d.Submitter, sh, form.WithLogger(d.Log))
			for name, v := range values {
				ctrl.Set(name, v)
			}
			outcome, err := ctrl.Submit(ctx)
			if err != nil {
				return err
			}
			switch outcome.State {
			case form.Idle:
				printErrors(out, outcome.Errors)
				return errNotSent
			case form.Failed:
				return errNotSent
			}
			fmt.Fprintf(out, "submission %s, view %s\n", outcome.SubmissionID, sh.View())
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fields, "field", nil, "Text field as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "File field as name=path or name=s3://bucket/key (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and print the encoded payload without sending")
	return cmd
}

func collectFields(ctx context.Context, d *app.Deps, fields, files []string) (form.Fields, error) {
	values := form.Fields{}
	for _, kv := range fields {
		name, value, err := splitAssignment(kv)
		if err != nil {
			return nil, err
		}
		values[name] = form.Text(value)
	}
	for _, kv := range files {
		name, ref, err := splitAssignment(kv)
		if err != nil {
			return nil, err
		}
		f, err := loadFile(ctx, d, ref)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		values[name] = form.Attach(f)
	}
	return values, nil
}

func splitAssignment(kv string) (string, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", kv)
	}
	return name, value, nil
}

func loadFile(ctx context.Context, d *app.Deps, ref string) (*form.File, error) {
	if s3storage.IsRef(ref) {
		if d.Attachments == nil {
			return nil, errors.New("s3 is not configured (set FORMDROP_S3_ENDPOINT)")
		}
		return d.Attachments.Fetch(ctx, ref)
	}
	return readLocalFile(ref, d.Config.MaxFileSize)
}

func readLocalFile(path string, maxSize int64) (*form.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("%s exceeds limit (%d bytes)", path, maxSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &form.File{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

func preview(w io.Writer, d *app.Deps, def form.Definition, values form.Fields) error {
	if errs := form.Validate(values, def.Schema); errs.HasErrors() {
		printErrors(w, errs)
		return errNotSent
	}
	p := form.BuildPayload(values, def.Schema, def.Mode, time.Now())
	endpoint, err := d.Config.Endpoint(def.Type)
	if err != nil {
		endpoint = "(" + err.Error() + ")"
	}
	fmt.Fprintf(w, "%s %s (%s)\n", p.Mode.Method(), endpoint, p.Mode)
	if p.Mode == form.ModeQuery {
		fmt.Fprintf(w, "?%s\n", p.Query())
		return nil
	}
	for _, e := range p.Entries {
		if e.File == nil {
			fmt.Fprintf(w, "  %s = %q\n", e.Key, e.Value)
			continue
		}
		fmt.Fprintf(w, "  %s = file %s (%s, %d bytes)\n", e.Key, e.File.Name, e.File.ContentType, len(e.File.Data))
		if s, err := pdfutil.Summarize(e.File.Data, 120); err == nil {
			fmt.Fprintf(w, "      %d page(s): %s\n", s.Pages, s.Excerpt)
		}
	}
	return nil
}

func printErrors(w io.Writer, errs form.ValidationErrors) {
	byField := errs.AsMap()
	names := make([]string, 0, len(byField))
	for name := range byField {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, byField[name])
	}
}

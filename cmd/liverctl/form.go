package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/jwalitptl/liver-report/internal/form"
	"github.com/jwalitptl/liver-report/internal/model"
	"github.com/jwalitptl/liver-report/internal/presenter"
	"github.com/jwalitptl/liver-report/internal/service/prediction"
	"github.com/jwalitptl/liver-report/internal/session"
)

type formOptions struct {
	common    commonOptions
	inputPath string
	outDir    string
}

func parseFormFlags(args []string, output io.Writer) (formOptions, error) {
	var opts formOptions
	fs := flag.NewFlagSet("form", flag.ContinueOnError)
	fs.SetOutput(output)
	opts.common.register(fs)
	fs.StringVar(&opts.inputPath, "input", "", "JSON file with default field values")
	fs.StringVar(&opts.outDir, "out", "", "Directory for the downloaded report (overrides report.output_dir)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.inputPath = strings.TrimSpace(opts.inputPath)
	opts.outDir = strings.TrimSpace(opts.outDir)
	return opts, nil
}

// runForm is the terminal page: fill, submit, then optionally download.
// A failed submit goes back to the form with the values kept.
func runForm(ctx context.Context, a *app, opts formOptions, stdin io.Reader, stdout io.Writer) error {
	values := model.FormInput{}
	if opts.inputPath != "" {
		loaded, err := form.LoadFile(opts.inputPath)
		if err != nil {
			return err
		}
		values = loaded
	}

	p := form.NewPrompter(stdin, stdout)
	sess := session.New(a.store)
	defer sess.End(context.Background())

	for {
		filled, err := p.Fill(ctx, values)
		if err != nil {
			return err
		}
		values = filled

		ok, err := p.Confirm("Submit for prediction?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(stdout, "Cancelled.")
			return nil
		}

		out, err := a.service.Submit(ctx, sess, values)
		if err != nil {
			presenter.Alert(stdout, prediction.OpSubmit, err)
			continue
		}
		printResult(stdout, out.Result)
		break
	}

	ok, err := p.Confirm("Download PDF report?")
	if err != nil || !ok {
		return err
	}
	if err := downloadReport(ctx, a, sess, opts.outDir, stdout, stdout); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Done.")
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jwalitptl/liver-report/internal/form"
	"github.com/jwalitptl/liver-report/internal/model"
	"github.com/jwalitptl/liver-report/internal/presenter"
	"github.com/jwalitptl/liver-report/internal/report"
	"github.com/jwalitptl/liver-report/internal/service/prediction"
	"github.com/jwalitptl/liver-report/internal/session"
)

type predictOptions struct {
	common    commonOptions
	inputPath string
	download  bool
	outDir    string
	values    model.FormInput
}

func parsePredictFlags(args []string, output io.Writer) (predictOptions, error) {
	var opts predictOptions
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(output)
	opts.common.register(fs)
	fs.StringVar(&opts.inputPath, "input", "", "JSON file with field values; flags override it")
	fs.BoolVar(&opts.download, "download", false, "Download the PDF report after a successful prediction")
	fs.StringVar(&opts.outDir, "out", "", "Directory for the downloaded report (overrides report.output_dir)")

	fields := make(map[string]*string, len(model.Fields))
	for _, f := range model.Fields {
		fields[f.Name] = fs.String(f.Name, "", f.Label)
	}
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: liverctl predict --patient_name NAME [--field value ...] [options]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	set := url.Values{}
	fs.Visit(func(f *flag.Flag) {
		if v, ok := fields[f.Name]; ok {
			set.Set(f.Name, *v)
		}
	})
	opts.values = form.FromValues(set)
	opts.inputPath = strings.TrimSpace(opts.inputPath)
	opts.outDir = strings.TrimSpace(opts.outDir)
	return opts, nil
}

func runPredict(ctx context.Context, a *app, opts predictOptions, stdout, stderr io.Writer) error {
	in := opts.values
	if opts.inputPath != "" {
		base, err := form.LoadFile(opts.inputPath)
		if err != nil {
			return err
		}
		in = form.Merge(base, opts.values)
	}

	sess := session.New(a.store)
	defer sess.End(context.Background())

	out, err := a.service.Submit(ctx, sess, in)
	if err != nil {
		presenter.Alert(stderr, prediction.OpSubmit, err)
		return errReported
	}
	printResult(stdout, out.Result)

	if !opts.download {
		return nil
	}
	return downloadReport(ctx, a, sess, opts.outDir, stdout, stderr)
}

func downloadReport(ctx context.Context, a *app, sess *session.Session, outDir string, stdout, stderr io.Writer) error {
	rep, err := a.service.Download(ctx, sess)
	if err != nil {
		presenter.Alert(stderr, prediction.OpDownload, err)
		return errReported
	}

	saver := a.saver
	if outDir != "" {
		saver = report.NewSaver(outDir)
	}
	path, err := saver.Save(rep)
	if err != nil {
		a.log.Error(err, "save report failed", "filename", rep.Filename)
		presenter.Alert(stderr, prediction.OpDownload, err)
		return errReported
	}
	fmt.Fprintf(stdout, "Report saved to %s\n", path)
	return nil
}

func printResult(w io.Writer, res model.CachedResult) {
	fmt.Fprintf(w, "Patient:     %s\n", res.PatientName())
	if stage := res.Stage(); stage != "" {
		fmt.Fprintf(w, "Stage:       %s\n", stage)
	}
	if precautions := res.Precautions(); precautions != "" {
		fmt.Fprintf(w, "Precautions: %s\n", precautions)
	}
}

package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"css3d/metrics"
	"css3d/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	applyFlags(cmd, env)

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.Info("Processing starting",
		zap.String("source", src), zap.String("destination", dst), zap.Stringer("run", env.RunID),
		zap.Bool("dry-run", env.DryRun), zap.Bool("in-place", env.InPlace))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// applyFlags moves command line options into configuration and environment.
// Flags win over configuration file.
func applyFlags(cmd *cli.Command, env *state.LocalEnv) {
	if cmd.IsSet("selector") {
		env.Cfg.Transform.Selector = cmd.String("selector")
	}
	if cmd.IsSet("keep-matrix3d") {
		env.Cfg.Transform.SkipNormalized = cmd.Bool("keep-matrix3d")
	}
	if cmd.Bool("compact") {
		env.Cfg.Output.Pretty = false
	}
	if cmd.Bool("no-backup") {
		env.Cfg.Output.Backup = false
	}
	if cmd.IsSet("workers") {
		env.Cfg.Output.Workers = max(cmd.Int("workers"), 0)
	}

	env.InPlace, env.Overwrite = cmd.Bool("in-place"), cmd.Bool("overwrite")
	env.DryRun, env.Verbose, env.JSON = cmd.Bool("dry-run"), cmd.Bool("verbose"), cmd.Bool("json")
	env.ReportPath, env.MetricsPath = cmd.String("report"), cmd.String("metrics")
}

// process handles the core conversion logic independently of CLI framework.
// It finds stylesheets under src, converts them using bounded pool of workers
// and produces requested reports. Failure of a single file does not stop
// processing, all failures are returned combined.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)
	started := time.Now()

	if env.InPlace && len(dst) > 0 {
		return errors.New("in-place mode cannot be combined with destination")
	}

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	if !fi.IsDir() && !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	target, err := resolveDestination(dst, fi.IsDir())
	if err != nil {
		return err
	}
	if target.path == src {
		return errors.New("destination cannot be the same as source, use in-place mode instead")
	}

	var sources []source
	if fi.IsDir() {
		skip := ""
		if target.path != "" && isWithin(src, target.path) {
			skip = target.path
		}
		if sources, err = collectSources(ctx, src, skip, &env.Cfg.Output, log); err != nil {
			return fmt.Errorf("unable to process directory: %w", err)
		}
	} else {
		s, err := singleSource(src)
		if errors.Is(err, errNotStylesheet) {
			return fmt.Errorf("input was not recognized as stylesheet (%s)", src)
		}
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		sources = append(sources, s)
	}

	if len(sources) == 0 {
		log.Info("Nothing to process", zap.String("source", src))
		return nil
	}

	var mc *metrics.Collector
	if env.MetricsPath != "" {
		mc = metrics.New()
	}

	reports := make([]*fileReport, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(env.Cfg.Output.EffectiveWorkers())
	for i, s := range sources {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				// queued work is abandoned
				return nil
			}
			rpt, err := processStylesheet(ctx, s, target, mc, log)
			reports[i] = rpt
			if err != nil {
				log.Error("Unable to process file", zap.String("file", s.path), zap.Error(err))
				errs[i] = fmt.Errorf("%s: %w", s.rel, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := multierr.Combine(errs...)
	if err := ctx.Err(); err != nil {
		result = multierr.Append(result, err)
	}

	if env.DryRun {
		if err := writeDryRun(env, sources, reports); err != nil {
			result = multierr.Append(result, err)
		}
	}

	report := newRunReport(env.RunID, started, reports)
	result = multierr.Append(result, publishReport(env, report, mc))

	log.Info("Processing summary",
		zap.Int("files", len(report.Files)),
		zap.Int("failed", report.Failed),
		zap.Int("rules", report.Totals.RulesProcessed),
		zap.Int("converted", report.Totals.TransformsConverted),
		zap.Int("malformed", report.Totals.TransformsFailed),
		zap.Int("skipped", report.Totals.TransformsSkipped))
	return result
}

// writeDryRun prints converted stylesheets in source order. When there are
// several of them each is prefixed with a comment naming the file.
func writeDryRun(env *state.LocalEnv, sources []source, reports []*fileReport) error {
	for i, rpt := range reports {
		if rpt == nil || rpt.rendered == nil {
			continue
		}
		if len(sources) > 1 {
			if _, err := fmt.Fprintf(env.Stdout, "/* %s */\n", filepath.ToSlash(sources[i].rel)); err != nil {
				return err
			}
		}
		if _, err := env.Stdout.Write(rpt.rendered); err != nil {
			return err
		}
	}
	return nil
}

// publishReport outputs JSON report and metrics wherever requested.
func publishReport(env *state.LocalEnv, report *runReport, mc *metrics.Collector) (err error) {
	if env.JSON || env.ReportPath != "" || env.Rpt != nil {
		data, merr := report.marshal()
		if merr != nil {
			return merr
		}
		if env.JSON {
			if _, werr := env.Stdout.Write(data); werr != nil {
				err = multierr.Append(err, fmt.Errorf("unable to write report: %w", werr))
			}
		}
		if env.ReportPath != "" {
			err = multierr.Append(err, report.writeFile(env.ReportPath))
		}
		env.Rpt.StoreData("report.json", data)
	}
	return multierr.Append(err, mc.WriteFile(env.MetricsPath))
}

// isWithin checks if path is inside (or equal to) dir.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"css3d/config"
	"css3d/css"
	"css3d/metrics"
	"css3d/rewrite"
	"css3d/state"
	"css3d/transform"
)

var errNotStylesheet = errors.New("not recognized as stylesheet")

// processStylesheet converts single file. Report is always returned, error
// is set when the file could not be converted or written.
func processStylesheet(ctx context.Context, src source, dst destination, mc *metrics.Collector, log *zap.Logger) (rpt *fileReport, rerr error) {
	env := state.EnvFromContext(ctx)
	rpt = newFileReport(src)

	log.Debug("Conversion starting", zap.String("from", src.path), zap.Stringer("encoding", src.enc))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.String("file", src.path), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		}
		result := "ok"
		if rerr != nil {
			result = "failed"
			rpt.Error = rerr.Error()
		}
		mc.FileDone(result, time.Since(start).Seconds())
		log.Info("Conversion completed",
			zap.String("file", src.rel), zap.String("to", rpt.Output), zap.String("result", result),
			zap.Int("converted", rpt.Stats.TransformsConverted), zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	sheet, err := readStylesheet(src, log)
	if err != nil {
		return rpt, err
	}

	conv := transform.NewConverter(log)
	res := rewrite.New(conv, rewrite.Options{
		SelectorFilter: env.Cfg.Transform.Selector,
		SkipNormalized: env.Cfg.Transform.SkipNormalized,
	}, log).Rewrite(sheet)

	rpt.Stats = res.Stats
	rpt.Entries = append(rpt.Entries, res.Entries...)
	rpt.Diagnostics = append(rpt.Diagnostics, res.Diagnostics...)

	mc.AddStats(res.Stats)
	mc.AddCache(conv.CacheStats())

	logDiagnostics(res.Diagnostics, src, log)
	if env.Verbose {
		for _, e := range res.Entries {
			log.Info("Transform converted",
				zap.String("file", src.rel),
				zap.String("selector", e.Selector),
				zap.String("original", e.Original),
				zap.Strings("operations", e.Operations),
				zap.String("converted", e.Converted))
		}
	}

	data, err := render(sheet, &env.Cfg.Output)
	if err != nil {
		return rpt, fmt.Errorf("unable to render stylesheet: %w", err)
	}

	if env.DryRun {
		rpt.rendered = data
		return rpt, nil
	}

	outputName := buildOutputPath(src, dst, env)
	if err := env.Rpt.StoreCopy("source-"+config.CleanFileName(src.rel), src.path); err != nil {
		log.Debug("Unable to store source in report", zap.String("file", src.path), zap.Error(err))
	}
	if err := prepareOutput(src, outputName, env, log); err != nil {
		return rpt, err
	}
	if err := writeAtomic(outputName, data); err != nil {
		return rpt, fmt.Errorf("unable to write output: %w", err)
	}
	rpt.Output = outputName
	env.Rpt.Store("result-"+config.CleanFileName(src.rel), outputName)
	return rpt, nil
}

// readStylesheet decodes and parses source. Stylesheets with syntax errors
// are refused since content around errors is lost and writing them back
// would damage the file.
func readStylesheet(src source, log *zap.Logger) (*css.Stylesheet, error) {
	f, err := os.Open(src.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(selectReader(f, src.enc))
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet (%s): %w", src.rel, err)
	}

	sheet := css.NewParser(log).Parse(data, src.rel)
	for _, w := range sheet.Warnings {
		log.Warn("Stylesheet problem", zap.String("file", src.rel), zap.String("warning", w))
	}
	if len(sheet.Errors) > 0 {
		return nil, fmt.Errorf("unable to parse stylesheet (%s): %s", src.rel, strings.Join(sheet.Errors, "; "))
	}
	return sheet, nil
}

func render(sheet *css.Stylesheet, cfg *config.OutputConfig) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if cfg.Pretty {
		_, err = sheet.WriteTo(&buf)
	} else {
		_, err = sheet.WriteCompact(&buf)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func logDiagnostics(diags []transform.Diagnostic, src source, log *zap.Logger) {
	for _, d := range diags {
		fields := []zap.Field{
			zap.String("file", src.rel),
			zap.Stringer("kind", d.Kind),
			zap.String("selector", d.Context),
		}
		switch d.Level {
		case transform.LevelWarn:
			log.Warn(d.Message, fields...)
		case transform.LevelInfo:
			log.Info(d.Message, fields...)
		default:
			log.Debug(d.Message, fields...)
		}
	}
}

package convert

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"css3d/config"
)

// source is a single stylesheet selected for processing.
type source struct {
	path string // absolute path
	rel  string // path relative to the scanned directory or base name
	enc  srcEncoding
}

// singleSource checks that file at path is a stylesheet.
func singleSource(path string) (source, error) {
	ok, enc, err := isStylesheetFile(path)
	if err != nil {
		return source{}, err
	}
	if !ok {
		return source{}, errNotStylesheet
	}
	return source{path: path, rel: filepath.Base(path), enc: enc}, nil
}

// collectSources walks directory tree looking for stylesheets. Hidden
// directories, node_modules, files produced by previous runs and anything
// under skip (destination directory nested in the source) are ignored.
// Result is sorted in natural order of relative paths.
func collectSources(ctx context.Context, dir, skip string, cfg *config.OutputConfig, log *zap.Logger) ([]source, error) {
	byRel := make(map[string]source)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}

		if d.IsDir() {
			if path == dir {
				return nil
			}
			if skipDirectory(d.Name()) || (skip != "" && path == skip) {
				log.Debug("Skipping directory", zap.String("dir", path))
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !hasCSSExt(path) {
			return nil
		}
		if producedByUs(path, cfg) {
			log.Debug("Skipping file, produced by previous run", zap.String("file", path))
			return nil
		}

		ok, enc, err := isStylesheetFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !ok {
			log.Debug("Skipping file, not recognized as stylesheet", zap.String("file", path))
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		}
		byRel[rel] = source{path: path, rel: rel, enc: enc}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(byRel))
	for k := range byRel {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))

	sources := make([]source, 0, len(keys))
	for _, k := range keys {
		sources = append(sources, byRel[k])
	}
	return sources, nil
}

func skipDirectory(name string) bool {
	return name == "node_modules" || (len(name) > 1 && strings.HasPrefix(name, "."))
}

// producedByUs reports output or backup files left by earlier runs.
func producedByUs(path string, cfg *config.OutputConfig) bool {
	name := strings.ToLower(filepath.Base(path))
	if cfg.Suffix != "" && strings.HasSuffix(name, strings.ToLower(cfg.Suffix)) {
		return true
	}
	return cfg.BackupSuffix != "" && strings.HasSuffix(name, strings.ToLower(cfg.BackupSuffix))
}

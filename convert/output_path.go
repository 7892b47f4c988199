package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"css3d/state"
)

// destination describes where results go, resolved once per run.
type destination struct {
	path string // absolute, empty when output goes next to sources
	dir  bool   // path names a directory
}

// resolveDestination decides whether dst is a directory. Directory sources
// always write into directory, for single file dst is a directory when it
// exists as one or ends with path separator.
func resolveDestination(dst string, dirSource bool) (destination, error) {
	if len(dst) == 0 {
		return destination{}, nil
	}
	trailing := strings.HasSuffix(dst, string(filepath.Separator)) || strings.HasSuffix(dst, "/")

	abs, err := filepath.Abs(dst)
	if err != nil {
		return destination{}, err
	}
	if dirSource || trailing {
		return destination{path: abs, dir: true}, nil
	}
	if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
		return destination{path: abs, dir: true}, nil
	}
	return destination{path: abs}, nil
}

// buildOutputPath returns output file name for the source. Without
// destination the result is placed next to the source using configured
// suffix, or replaces the source in in-place mode. Directory destination
// mirrors source tree layout.
func buildOutputPath(src source, dst destination, env *state.LocalEnv) string {
	switch {
	case dst.path == "" && env.InPlace:
		return src.path
	case dst.path == "":
		return siblingName(src.path, env.Cfg.Output.Suffix)
	case dst.dir:
		return filepath.Join(dst.path, src.rel)
	default:
		return dst.path
	}
}

// siblingName replaces extension of path with suffix: site.css becomes
// site.matrix3d.css.
func siblingName(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

// prepareOutput makes sure output could be written: creates directories,
// enforces overwrite policy and makes backup copy of the source in in-place
// mode.
func prepareOutput(src source, outputName string, env *state.LocalEnv, log *zap.Logger) error {
	if outputName == src.path {
		if !env.Cfg.Output.Backup {
			return nil
		}
		backup := src.path + env.Cfg.Output.BackupSuffix
		if _, err := os.Stat(backup); err == nil {
			log.Warn("Replacing existing backup", zap.String("file", backup))
		}
		if err := copyFile(src.path, backup); err != nil {
			return fmt.Errorf("unable to create backup: %w", err)
		}
		log.Debug("Backup created", zap.String("file", backup))
		return nil
	}

	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func copyFile(from, to string) (err error) {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(to)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// writeAtomic writes data to temporary file in the target directory and
// renames it over the name, so readers never see partial stylesheet.
// Permissions of the file being replaced are kept.
func writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	mode := os.FileMode(0644)
	if fi, err := os.Stat(name); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

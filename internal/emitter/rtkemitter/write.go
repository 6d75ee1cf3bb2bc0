package rtkemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Write removes stale generated modules from opts.OutDir and writes the
// bundle, one file at a time. Files that do not follow the generated naming
// convention are never touched. A failure part-way leaves the directory
// partially updated; each individual file is replaced atomically.
func Write(ctx context.Context, b *Bundle, opts Options) (*Result, error) {
	if b == nil {
		return nil, fmt.Errorf("rtkemitter: nil bundle")
	}
	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolve out dir: %w", err)
	}
	log := logger(opts)
	res := &Result{OutDir: abs, Planned: b.Planned, DryRun: opts.DryRun}

	stale, err := staleModules(abs)
	if err != nil {
		return nil, err
	}
	res.Removed = stale
	if opts.DryRun {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	for _, name := range stale {
		if err := os.Remove(filepath.Join(abs, name)); err != nil && !os.IsNotExist(err) {
			return res, fmt.Errorf("remove stale %s: %w", name, err)
		}
		log.Debug("removed stale module", "file", name)
	}
	for _, pf := range b.Planned {
		if err := writeAtomic(abs, pf.RelPath, b.Files[pf.RelPath], pf.Mode); err != nil {
			return res, err
		}
		log.Debug("wrote module", "file", pf.RelPath, "bytes", pf.Size)
	}
	return res, nil
}

// staleModules lists generated modules currently present in dir, sorted. A
// missing directory has none.
func staleModules(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read out dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsGenerated(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// writeAtomic writes content to a temp file next to the target and renames
// it into place.
func writeAtomic(dir, rel string, content []byte, mode os.FileMode) error {
	target := filepath.Join(dir, rel)
	tmp, err := os.CreateTemp(dir, "."+rel+".tmp-*")
	if err != nil {
		return fmt.Errorf("write temp %s: %w", rel, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("write temp %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("close temp %s: %w", rel, err)
	}
	if err := os.Chmod(name, mode); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("chmod %s: %w", rel, err)
	}
	if err := os.Rename(name, target); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename %s: %w", rel, err)
	}
	return nil
}

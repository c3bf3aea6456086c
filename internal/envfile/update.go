package envfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/lock"
	"github.com/modelmint/mintkey/internal/logger"
)

// NewFilePerm is used when the env file does not exist yet. Existing files keep their mode.
const NewFilePerm os.FileMode = 0600

// BackupSuffix is appended to the env file name for the optional backup copy.
const BackupSuffix = ".bak"

// UpdateOptions controls how Update touches the filesystem.
type UpdateOptions struct {
	// Backup writes the previous contents to <path>.bak before replacing.
	Backup bool

	// Lock serializes concurrent mintkey runs against the same file.
	Lock bool

	// LockTimeout bounds how long to wait for the lock.
	LockTimeout time.Duration

	// DryRun computes the plan without writing anything.
	DryRun bool

	// Expect, when set, is the block the operator confirmed replacing. Once
	// the lock is held Update fails with a LOCK error if the file's block no
	// longer matches it.
	Expect *Block

	Logger logger.Logger
}

// Result reports what Update did.
type Result struct {
	Path       string
	Removed    []string
	Changed    bool
	Created    bool
	BackupPath string
	DryRun     bool
	Plan       Plan
}

// Update replaces the managed block in the env file at path with b.
//
// The whole file is read, filtered, and written to a temporary file that is
// renamed over the original. Unchanged content is not rewritten.
func Update(ctx context.Context, path string, b Block, opts UpdateOptions) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	target, err := ResolveTarget(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStepFailed,
			fmt.Sprintf("Can't resolve env file %s", path),
			"Check that the path and any symlinks point somewhere readable")
	}

	if opts.Lock && !opts.DryRun {
		l, err := lock.Acquire(ctx, target, opts.LockTimeout, "update "+target)
		if err != nil {
			return nil, err
		}
		defer l.Release() //nolint:errcheck // Best-effort unlock, error not actionable
		log.Debug("acquired lock %s", l.Path)
	}

	current, created, err := readCurrent(target)
	if err != nil {
		return nil, err
	}

	if opts.Expect != nil {
		values, _ := ParseOwned(current)
		if blockOf(values) != *opts.Expect {
			return nil, errors.New(errors.ErrLock,
				fmt.Sprintf("%s changed while waiting for confirmation", target),
				"Run 'mintkey setup' again to review the new contents")
		}
	}

	plan := Compute(current, b)
	res := &Result{
		Path:    target,
		Removed: plan.Removed,
		Changed: plan.Changed(),
		Created: created,
		DryRun:  opts.DryRun,
		Plan:    plan,
	}

	if opts.DryRun {
		return res, nil
	}

	if !res.Changed {
		log.Debug("%s already up to date", target)
		return res, nil
	}

	if opts.Backup && !created {
		res.BackupPath = target + BackupSuffix
		if err := renameio.WriteFile(res.BackupPath, current, NewFilePerm); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrStepFailed,
				fmt.Sprintf("Failed to write backup %s", res.BackupPath),
				"Check write permissions on the env file's directory, or drop --backup")
		}
		log.Debug("backed up previous contents to %s", res.BackupPath)
	}

	if err := renameio.WriteFile(target, plan.After, NewFilePerm); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStepFailed,
			fmt.Sprintf("Failed to write %s", target),
			"Check write permissions on the env file and its directory")
	}

	log.Debug("wrote %s (%d stale line(s) removed)", target, len(plan.Removed))
	return res, nil
}

// Preview computes the plan for path without locking or writing.
func Preview(path string, b Block) (*Result, error) {
	return Update(context.Background(), path, b, UpdateOptions{DryRun: true})
}

// ResolveTarget returns the absolute path Update writes and locks. A
// symlinked env file resolves to the real file so the rename replaces it
// instead of the link.
func ResolveTarget(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", err
	}
	return resolved, nil
}

func readCurrent(path string) (data []byte, created bool, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, true, nil
		}
		return nil, false, errors.WrapWithCode(err, errors.ErrStepFailed,
			fmt.Sprintf("Failed to read %s", path),
			"Check that the env file is readable")
	}
	return data, false, nil
}

package setup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/modelmint/mintkey/internal/config"
	"github.com/modelmint/mintkey/internal/envfile"
	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/logger"
)

// State is how far the procedure got.
type State int

const (
	StateUnchecked State = iota
	StatePermissionsSet
	StateKeyRead
	StateEnvUpdated
)

// String returns the state name used in logs and reports.
func (s State) String() string {
	switch s {
	case StateUnchecked:
		return "unchecked"
	case StatePermissionsSet:
		return "permissions-set"
	case StateKeyRead:
		return "key-read"
	case StateEnvUpdated:
		return "env-updated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ConfirmFunc is asked before an existing, different block is replaced.
// Returning false leaves the env file alone.
type ConfirmFunc func(current, next envfile.Block) (bool, error)

// Options is everything Run needs. Nothing is read from the environment.
type Options struct {
	KeyName string
	Paths   config.Paths

	// Strict propagates chmod, read, and write failures. When false they are
	// logged as warnings and the procedure carries on.
	Strict bool

	Backup      bool
	Lock        bool
	LockTimeout time.Duration
	DryRun      bool

	Confirm ConfirmFunc
	Logger  logger.Logger
}

// Result describes a run.
type Result struct {
	State       State
	Keys        KeyPair
	EnvFile     string
	PublicKey   string
	Info        *KeyInfo // nil when the public key doesn't parse
	Permissions []PermissionChange
	Update      *envfile.Result
	Warnings    []string
	Skipped     bool // the operator declined the replacement
	DryRun      bool
}

// Block returns the env block this run writes.
func (r *Result) Block() envfile.Block {
	return envfile.Block{
		KeyName:        r.Keys.Name,
		PublicKey:      r.PublicKey,
		PrivateKeyPath: r.Keys.PrivatePath,
	}
}

// Run executes the setup procedure: check the pair exists, fix permissions,
// read the public key, and rewrite the COMMON_SSH_ block in the env file.
//
// A missing key always fails before anything is modified.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	keys, envPath, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}

	res := &Result{
		State:   StateUnchecked,
		Keys:    keys,
		EnvFile: envPath,
		DryRun:  opts.DryRun,
	}

	// stepFailed returns err under the strict policy and records a warning otherwise.
	stepFailed := func(err error) error {
		if opts.Strict {
			return err
		}
		msg := errors.Summary(err)
		log.Warn("%s", msg)
		res.Warnings = append(res.Warnings, msg)
		return nil
	}

	if err := keys.Check(); err != nil {
		return res, err
	}
	log.Debug("found key pair %s", keys.PrivatePath)

	if opts.DryRun {
		log.Debug("dry run: leaving permissions alone")
	} else {
		changes, err := NormalizePermissions(keys)
		res.Permissions = changes
		if err != nil {
			if err := stepFailed(err); err != nil {
				return res, err
			}
		}
	}
	res.State = StatePermissionsSet

	pub, err := ReadPublicKey(keys.PublicPath)
	switch {
	case errors.IsCode(err, errors.ErrInvalidPublicKey):
		return res, err
	case err != nil:
		if err := stepFailed(err); err != nil {
			return res, err
		}
	case pub == "":
		empty := errors.New(errors.ErrInvalidPublicKey,
			fmt.Sprintf("Public key %s is empty", keys.PublicPath),
			"Recreate it: ssh-keygen -y -f "+keys.PrivatePath+" > "+keys.PublicPath)
		if err := stepFailed(empty); err != nil {
			return res, err
		}
	}
	res.PublicKey = pub
	res.State = StateKeyRead

	if pub != "" {
		info, _, err := InspectPublicKey(pub)
		if err != nil {
			log.Debug("public key is not in authorized_keys format: %v", err)
		} else {
			res.Info = info
		}
	}

	block := res.Block()

	var confirmed *envfile.Block
	if opts.Confirm != nil && !opts.DryRun {
		proceed, seen, err := confirmReplace(envPath, block, opts.Confirm)
		if err != nil {
			return res, err
		}
		if !proceed {
			log.Info("left %s unchanged", envPath)
			res.Skipped = true
			return res, nil
		}
		confirmed = seen
	}

	update, err := envfile.Update(ctx, envPath, block, envfile.UpdateOptions{
		Backup:      opts.Backup,
		Lock:        opts.Lock,
		LockTimeout: opts.LockTimeout,
		DryRun:      opts.DryRun,
		Expect:      confirmed,
		Logger:      log,
	})
	if err != nil {
		if !errors.IsCode(err, errors.ErrStepFailed) {
			return res, err
		}
		if err := stepFailed(err); err != nil {
			return res, err
		}
	}
	res.Update = update
	res.State = StateEnvUpdated

	return res, nil
}

func resolvePaths(opts Options) (KeyPair, string, error) {
	if opts.Paths.PrivateKey == "" || opts.Paths.PublicKey == "" || opts.Paths.EnvFile == "" {
		return KeyPair{}, "", errors.New(errors.ErrConfig,
			"Key and env file paths are required",
			"Set ssh_dir/key_name or private_key, public_key and env_file")
	}

	priv, err := filepath.Abs(opts.Paths.PrivateKey)
	if err != nil {
		return KeyPair{}, "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't resolve private key path", "")
	}
	pub, err := filepath.Abs(opts.Paths.PublicKey)
	if err != nil {
		return KeyPair{}, "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't resolve public key path", "")
	}
	env, err := filepath.Abs(opts.Paths.EnvFile)
	if err != nil {
		return KeyPair{}, "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't resolve env file path", "")
	}

	return KeyPair{Name: opts.KeyName, PrivatePath: priv, PublicPath: pub}, env, nil
}

// confirmReplace asks only when a complete or partial block exists and differs.
// The prompt runs before the lock is taken, so on a yes it returns the block
// the operator saw for Update to re-check under the lock.
func confirmReplace(envPath string, next envfile.Block, confirm ConfirmFunc) (bool, *envfile.Block, error) {
	cur, err := envfile.Read(envPath)
	if err != nil || !cur.Found || cur.Block == next {
		return true, nil, nil
	}
	proceed, err := confirm(cur.Block, next)
	if err != nil || !proceed {
		return false, nil, err
	}
	return true, &cur.Block, nil
}

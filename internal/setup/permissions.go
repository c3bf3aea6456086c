package setup

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/modelmint/mintkey/internal/errors"
)

// PermissionChange records one chmod.
type PermissionChange struct {
	Path    string
	Before  os.FileMode
	After   os.FileMode
	Changed bool
}

// NormalizePermissions sets the private key to 0600 and the public key to
// 0644. Both files are attempted even if the first chmod fails. Failures are
// collected into a single STEP_FAILED error.
func NormalizePermissions(k KeyPair) ([]PermissionChange, error) {
	var changes []PermissionChange
	var result *multierror.Error

	for _, target := range []struct {
		path string
		perm os.FileMode
	}{
		{k.PrivatePath, PrivateKeyPerm},
		{k.PublicPath, PublicKeyPerm},
	} {
		change, err := setPerm(target.path, target.perm)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		changes = append(changes, change)
	}

	if err := result.ErrorOrNil(); err != nil {
		return changes, errors.WrapWithCode(err, errors.ErrStepFailed,
			"Failed to fix key file permissions",
			fmt.Sprintf("Run: chmod %o %s && chmod %o %s", PrivateKeyPerm, k.PrivatePath, PublicKeyPerm, k.PublicPath))
	}
	return changes, nil
}

func setPerm(path string, perm os.FileMode) (PermissionChange, error) {
	info, err := os.Stat(path)
	if err != nil {
		return PermissionChange{}, err
	}

	change := PermissionChange{
		Path:   path,
		Before: info.Mode().Perm(),
		After:  perm,
	}
	if change.Before == perm {
		return change, nil
	}

	if err := os.Chmod(path, perm); err != nil {
		return change, fmt.Errorf("chmod %o %s: %w", perm, path, err)
	}
	change.Changed = true
	return change, nil
}

// PermissionsOK reports whether path already has exactly want.
func PermissionsOK(path string, want os.FileMode) (os.FileMode, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false, err
	}
	perm := info.Mode().Perm()
	return perm, perm == want, nil
}

// Package setup prepares an existing SSH key pair for the ModelMint backend.
//
// Run walks a fixed sequence of states:
//
//	Unchecked -> PermissionsSet -> KeyRead -> EnvUpdated
//
// # Key Pair
//
// KeyPair.Check confirms both halves exist before anything is touched. A
// missing private key is reported first, with the ssh-keygen command that
// would create it:
//
//	ssh-keygen -t rsa -b 4096 -f ~/.ssh/modelmint-common-key -C modelmint-common-key
//
// Keys are never generated or uploaded here.
//
// # Permissions
//
// NormalizePermissions sets the private key to 0600 and the public key to
// 0644. Every failure is collected, so one bad file doesn't hide the other.
//
// # Public Key
//
// ReadPublicKey trims surrounding whitespace, including the trailing newline,
// and rejects content that spans lines. InspectPublicKey and VerifyPair use
// golang.org/x/crypto/ssh to report the fingerprint and to check the private
// key matches. Content that doesn't parse is still written; it just has no
// fingerprint.
//
// # Failure Policy
//
// With Options.Strict set, a failed chmod, read, or write stops the run. Without
// it the failure is logged as a warning and the run continues. Missing keys and
// multi-line public keys always stop the run.
package setup

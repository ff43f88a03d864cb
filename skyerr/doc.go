// Package skyerr defines the structured error taxonomy shared by the
// derivation, container, and registry packages.
//
// The taxonomy is ordered by when a failure is detected: validation errors
// at the API boundary, format errors after cheap structural checks, and
// authentication errors only after a crypto operation has run. Overflow
// errors mark size/revision arithmetic that would exceed uint64 rather than
// wrapping silently. Nothing in this module retries internally; every error
// surfaces synchronously to the caller.
package skyerr

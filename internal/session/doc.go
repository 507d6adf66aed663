// Package session promotes an anonymous local cart to an authenticated
// user's server-side cart.
//
// Merge is a one-shot operation at the login boundary: the local items are
// submitted to the Cart Service as creation intent, and the service's
// resulting cart becomes canonical via a SET_ITEMS dispatch. A failed server
// call leaves the local cart intact and usable, and the caller may retry.
//
// The reducer side is naturally idempotent (SET_ITEMS replaces rather than
// appends), but the server side is not — the Merger guards against a second
// successful invocation for the same login with ErrAlreadyMerged.
package session

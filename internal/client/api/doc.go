// Package api contains the client-side building blocks for talking to the
// secureshare backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Register/Login/VerifyLogin/Logout, file upload/download/delete,
//     share-grant creation and resolution, and user listings.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that manages a
//     bearer session token, reports upload progress, and maps HTTP status
//     codes to the sentinel errors in internal/common.
//
// # Session expiry
//
// Any response carrying status 401 invokes the configured OnUnauthorized
// hook exactly once for that request, regardless of which operation issued
// it. The session state machine registers its ExpireSession method there;
// the hook is idempotent, so a 401 on a login attempt is harmless.
//
// # Error handling
//
// Common conditions are exposed as sentinel errors matched with errors.Is:
// common.ErrUnavailable, common.ErrUnauthorized, common.ErrInvalidCode,
// common.ErrVerificationExpired, common.ErrGrantNotFound,
// common.ErrGrantExpired.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation/timeouts.
package api

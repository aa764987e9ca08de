// Package common contains shared constants and sentinel errors used across
// secureshare components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer
// session token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// VerificationTTLSeconds is how long a login verification code stays valid.
// The client countdown and the server-side store must agree on this value.
const VerificationTTLSeconds = 600

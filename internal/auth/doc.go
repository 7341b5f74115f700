// Package auth guards the HTTP transport with an optional static bearer token.
//
// When server.auth_token is set, every /v1 endpoint requires:
//
//	Authorization: Bearer <token>
//
// The health endpoint stays open. The token is a shared secret compared in
// constant time; there are no principals, roles, or sessions.
package auth

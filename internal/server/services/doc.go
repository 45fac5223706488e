// Package services contains server-side business logic: the credential
// store (AccountService), the session registry, the authentication flows and
// authorization gate (AuthService), and post management with image storage
// (PostService). Services talk to storage only through a
// repomanager.RepositoryManager and bound every store call with the
// configured timeout.
package services

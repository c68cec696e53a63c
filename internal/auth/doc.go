// Package auth implements user registration, password verification and
// session handling for the catalog.
//
// Authentication is session-cookie based: a successful login stores the
// user's ID and role in an SQLite-backed scs session, and middleware
// resolves that session into the request context on every call. CSRF
// protection wraps the browser-facing routes, and role checks gate the
// admin-only catalog mutations.
package auth

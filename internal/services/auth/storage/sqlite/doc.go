// Package sqlite provides SQLite-backed auth persistence.
//
// One file holds users and pending sign-in states.
package sqlite

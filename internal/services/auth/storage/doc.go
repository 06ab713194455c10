// Package storage defines persistence contracts for identity records and
// pending ORCID sign-in state.
package storage

// Package oauth implements the ORCID authorization-code sign-in.
//
// Start stores a single-use state with its PKCE verifier; Complete consumes
// it, exchanges the code, and upserts the user keyed by ORCID iD.
package oauth

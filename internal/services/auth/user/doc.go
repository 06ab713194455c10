// Package user defines the signed-in identity anchored on an ORCID iD.
//
// Profiles reference users by id; the ORCID iD and access token come from the
// sign-in exchange and are refreshed on every sign-in.
package user

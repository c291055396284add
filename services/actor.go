package services

import "github.com/google/uuid"

// Actor is the authenticated caller identity supplied by the auth
// middleware. Services trust it but never compute it.
type Actor struct {
	ID      uuid.UUID
	Name    string
	IsAdmin bool
}

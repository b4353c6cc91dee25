package main

import "fmt"

type ownedResource interface {
	ownerID() int
}

// assertOwner refuses access to a note or task that callerID does not own.
func assertOwner(r ownedResource, callerID int) error {
	if r.ownerID() != callerID {
		return fmt.Errorf("%w: resource owned by account %d, requested by %d", errForbidden, r.ownerID(), callerID)
	}
	return nil
}

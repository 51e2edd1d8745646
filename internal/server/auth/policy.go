package auth

import (
	"github.com/avolkov/authkeeper/internal/common"
	"github.com/avolkov/authkeeper/internal/server/models"
)

// AuthorizePatch decides whether actor may apply patch to the user identified
// by targetID. Rules, in order:
//
//  1. only admins may set IsAdmin or IsActive, on anyone;
//  2. non-admins may patch their own record only;
//  3. everything else (username/email/password on an allowed target) passes.
//
// Denial is common.ErrorForbidden, distinct from the unauthorized errors the
// verifier produces.
func AuthorizePatch(actor *models.User, targetID string, patch models.UserPatch) error {
	if actor.IsAdmin {
		return nil
	}
	if patch.TouchesFlags() {
		return common.ErrorForbidden
	}
	if targetID != actor.ID {
		return common.ErrorForbidden
	}
	return nil
}

// AuthorizeDelete decides whether actor may delete the user identified by
// targetID. Self-deletion is always denied, even for admins; deleting anyone
// else requires the admin flag.
func AuthorizeDelete(actor *models.User, targetID string) error {
	if targetID == actor.ID {
		return common.ErrorForbidden
	}
	if !actor.IsAdmin {
		return common.ErrorForbidden
	}
	return nil
}

package models

// UserPatch carries an optional change set for a user record. Nil fields are
// left untouched. UserID selects the target; when nil the caller patches
// their own record. Password, when set, must already be hashed.
type UserPatch struct {
	UserID   *string
	Username *string
	Email    *string
	Password *string
	IsAdmin  *bool
	IsActive *bool
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Password == nil &&
		p.IsAdmin == nil && p.IsActive == nil
}

// TouchesFlags reports whether the patch modifies the admin-only flags.
func (p UserPatch) TouchesFlags() bool {
	return p.IsAdmin != nil || p.IsActive != nil
}

// ApplyPatch returns a copy of user with the patch applied. The input record
// is not mutated; persisting the result is the caller's single explicit step.
func ApplyPatch(user User, patch UserPatch) User {
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		user.Password = *patch.Password
	}
	if patch.IsAdmin != nil {
		user.IsAdmin = *patch.IsAdmin
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	return user
}

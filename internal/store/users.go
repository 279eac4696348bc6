package store

import (
	"fmt"
	"strings"

	"huddle/api/internal/rbac"
	apperrors "huddle/api/pkg/errors"
)

// CreateUser registers an account. The caller has already validated and
// normalized the inputs; uniqueness checks happen here so they are atomic with
// the insert. The very first user becomes a global owner.
func (d *Dataset) CreateUser(email, passwordHash, nameFirst, nameLast string) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range d.userOrder {
		if d.users[id].Email == email {
			return User{}, apperrors.InvalidArg("email already used")
		}
	}

	permission := rbac.Member
	if len(d.userOrder) == 0 {
		permission = rbac.Owner
	}

	d.nextUserID++
	user := &User{
		ID:           d.nextUserID,
		Email:        email,
		PasswordHash: passwordHash,
		NameFirst:    nameFirst,
		NameLast:     nameLast,
		Handle:       d.generateHandleLocked(nameFirst, nameLast),
		Permission:   permission,
	}
	d.users[user.ID] = user
	d.userOrder = append(d.userOrder, user.ID)
	return *user, nil
}

// generateHandleLocked lowercases the concatenated name, keeps the last 20
// characters, and appends a numeric suffix until the handle is unique.
func (d *Dataset) generateHandleLocked(nameFirst, nameLast string) string {
	base := strings.ToLower(nameFirst + nameLast)
	if len(base) > 20 {
		base = base[len(base)-20:]
	}
	handle := base
	for suffix := 0; d.handleTakenLocked(handle); suffix++ {
		handle = base + fmt.Sprintf("%d", suffix)
		if len(handle) > 20 {
			handle = handle[len(handle)-20:]
		}
	}
	return handle
}

func (d *Dataset) handleTakenLocked(handle string) bool {
	if handle == "" {
		return true
	}
	for _, id := range d.userOrder {
		if d.users[id].Handle == handle {
			return true
		}
	}
	return false
}

// UserByEmail returns a copy of the account registered under email.
func (d *Dataset) UserByEmail(email string) (User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range d.userOrder {
		if d.users[id].Email == email {
			return *d.users[id], true
		}
	}
	return User{}, false
}

// UserByID returns a copy of the account with the given id.
func (d *Dataset) UserByID(userID int64) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[userID]
	if !ok {
		return User{}, apperrors.NotFound(fmt.Sprintf("user %d does not exist", userID))
	}
	return *user, nil
}

// Users lists every account in registration order.
func (d *Dataset) Users() []UserProfile {
	d.mu.Lock()
	defer d.mu.Unlock()
	profiles := make([]UserProfile, 0, len(d.userOrder))
	for _, id := range d.userOrder {
		user := d.users[id]
		profiles = append(profiles, UserProfile{
			ID:              user.ID,
			Email:           user.Email,
			NameFirst:       user.NameFirst,
			NameLast:        user.NameLast,
			Handle:          user.Handle,
			ProfileImageURL: user.ProfileImageURL,
		})
	}
	return profiles
}

func (d *Dataset) SetName(userID int64, nameFirst, nameLast string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[userID]
	if !ok {
		return apperrors.NotFound("user does not exist")
	}
	user.NameFirst = nameFirst
	user.NameLast = nameLast
	return nil
}

func (d *Dataset) SetEmail(userID int64, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[userID]
	if !ok {
		return apperrors.NotFound("user does not exist")
	}
	for _, id := range d.userOrder {
		if id != userID && d.users[id].Email == email {
			return apperrors.InvalidArg("email is being used by another user")
		}
	}
	user.Email = email
	return nil
}

func (d *Dataset) SetHandle(userID int64, handle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[userID]
	if !ok {
		return apperrors.NotFound("user does not exist")
	}
	for _, id := range d.userOrder {
		if id != userID && d.users[id].Handle == handle {
			return apperrors.InvalidArg(fmt.Sprintf("handle %s is already in use", handle))
		}
	}
	user.Handle = handle
	return nil
}

func (d *Dataset) SetProfileImage(userID int64, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[userID]
	if !ok {
		return apperrors.NotFound("user does not exist")
	}
	user.ProfileImageURL = url
	return nil
}

// SetPermission changes a user's global permission level. The caller has
// already checked the actor's rights and the permission value.
func (d *Dataset) SetPermission(targetID int64, permission rbac.Permission) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[targetID]
	if !ok {
		return apperrors.NotFound(fmt.Sprintf("user %d does not exist", targetID))
	}
	user.Permission = permission
	return nil
}

// IsGlobalOwner reports whether the user holds workspace-wide owner rights.
func (d *Dataset) IsGlobalOwner(userID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isGlobalOwnerLocked(userID)
}

// AssignResetCode records a password reset code for the account registered
// under email. Reports false for unknown emails so callers can stay silent
// about which addresses are registered.
func (d *Dataset) AssignResetCode(email, code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range d.userOrder {
		if d.users[id].Email == email {
			d.users[id].ResetCode = code
			return true
		}
	}
	return false
}

// ResetCodeInUse reports whether any account currently holds code.
func (d *Dataset) ResetCodeInUse(code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range d.userOrder {
		if d.users[id].ResetCode == code {
			return true
		}
	}
	return false
}

// RedeemResetCode replaces the password hash of the account holding code and
// consumes the code.
func (d *Dataset) RedeemResetCode(code, passwordHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range d.userOrder {
		user := d.users[id]
		if user.ResetCode != "" && user.ResetCode == code {
			user.PasswordHash = passwordHash
			user.ResetCode = ""
			return nil
		}
	}
	return apperrors.InvalidArg("reset code invalid")
}

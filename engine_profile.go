package coursehub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/coursehub/password"
	"github.com/MrEthical07/coursehub/session"
)

// UserInfo returns the account for userID, preferring the session record
// and falling back to the store when no record exists.
func (e *Engine) UserInfo(ctx context.Context, userID string) (*User, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	snap, err := e.sessions.Get(ctx, userID)
	switch {
	case err == nil:
		return userFromSnapshot(snap)
	case errors.Is(err, session.ErrSessionNotFound):
	default:
		e.logger.Warn(ctx, "session read failed, using store", "user_id", userID, "error", err)
	}

	u, err := e.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicUser(u), nil
}

// UpdateUserInfo changes name and email. Empty fields are left alone. An
// email owned by another account returns ErrDuplicateEmail.
func (e *Engine) UpdateUserInfo(ctx context.Context, userID string, req UpdateUserInfoRequest) (*User, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if err := req.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	current, err := e.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var update ProfileUpdate
	if name := strings.TrimSpace(req.Name); name != "" && name != current.Name {
		update.Name = &name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != current.Email {
		exists, err := e.users.EmailExists(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("email lookup: %w", err)
		}
		if exists {
			e.emitAudit(ctx, auditEventProfileUpdate, false, userID, email, ErrDuplicateEmail, nil)
			return nil, ErrDuplicateEmail
		}
		update.Email = &email
	}
	if update.Name == nil && update.Email == nil {
		return publicUser(current), nil
	}

	updated, err := e.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	updated = publicUser(updated)
	if err := e.saveSnapshot(ctx, updated); err != nil {
		return nil, err
	}

	e.metricInc(MetricProfileUpdate)
	e.emitAudit(ctx, auditEventProfileUpdate, true, userID, updated.Email, nil, nil)
	return updated, nil
}

// UpdatePassword replaces the password after checking the old one.
// Accounts without a password and wrong old passwords both return
// ErrInvalidCredentials.
func (e *Engine) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (*User, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if oldPassword == "" || newPassword == "" {
		return nil, fmt.Errorf("%w: old and new password are required", ErrInvalidInput)
	}
	if oldPassword == newPassword {
		e.metricInc(MetricPasswordChangeReuseRejected)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, "", ErrPasswordReuse, nil)
		return nil, ErrPasswordReuse
	}

	encoded, err := e.users.PasswordHash(ctx, userID)
	if err != nil {
		return nil, err
	}
	if encoded == "" {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, "", ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}
	ok, err := e.hasher.Verify(oldPassword, encoded)
	if err != nil {
		e.logger.Error(ctx, "stored password hash unusable", "user_id", userID, "error", err)
	}
	if !ok {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, "", ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	next, err := e.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, password.ErrPasswordPolicy) {
			return nil, fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := e.users.UpdatePasswordHash(ctx, userID, next); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	u, err := e.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u = publicUser(u)
	if err := e.saveSnapshot(ctx, u); err != nil {
		return nil, err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, userID, u.Email, nil, nil)
	return u, nil
}

// UpdateAvatar uploads source (a data URI or URL), stores the new reference
// and then removes the previous image. A failed upload leaves the current
// avatar untouched.
func (e *Engine) UpdateAvatar(ctx context.Context, userID, source string) (*User, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.avatars == nil {
		return nil, ErrAvatarUnavailable
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: avatar is required", ErrInvalidInput)
	}

	current, err := e.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	avatar, err := e.avatars.Upload(ctx, source)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		e.logger.Error(ctx, "avatar upload failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAvatarUnavailable, err)
	}

	updated, err := e.users.UpdateAvatar(ctx, userID, avatar)
	if err != nil {
		if avatar.PublicID != "" {
			if derr := e.avatars.Destroy(ctx, avatar.PublicID); derr != nil {
				e.logger.Warn(ctx, "orphaned avatar not removed", "user_id", userID, "public_id", avatar.PublicID, "error", derr)
			}
		}
		return nil, fmt.Errorf("update avatar: %w", err)
	}
	if id := current.Avatar.PublicID; id != "" && id != avatar.PublicID {
		if err := e.avatars.Destroy(ctx, id); err != nil {
			e.logger.Warn(ctx, "previous avatar not removed", "user_id", userID, "public_id", id, "error", err)
		}
	}
	updated = publicUser(updated)
	if err := e.saveSnapshot(ctx, updated); err != nil {
		return nil, err
	}

	e.metricInc(MetricAvatarUpdate)
	e.emitAudit(ctx, auditEventAvatarUpdate, true, userID, updated.Email, nil, func() map[string]string {
		return map[string]string{"public_id": avatar.PublicID}
	})
	return updated, nil
}

// Package identity computes the effective identity for portal requests.
// Admins can impersonate a client account; everyone else always acts as
// themselves. The resolver runs on every request, so a revoked or
// corrupt impersonation flag heals itself on the next page load.
package identity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/northwind-msp/portal-api/internal/model"
)

// ErrNotAdmin is returned when a non-admin attempts to start or stop an
// impersonation.
var ErrNotAdmin = eris.New("identity: impersonation requires the admin role")

// FlagStore is the slice of the persistence layer the resolver needs.
// Flags are stored raw; this package owns parsing and repair.
type FlagStore interface {
	SetImpersonationFlag(ctx context.Context, adminID string, raw []byte) error
	GetImpersonationFlag(ctx context.Context, adminID string) ([]byte, error)
	ClearImpersonationFlag(ctx context.Context, adminID string) error
}

// Resolver derives the effective identity from a verified session plus
// any stored impersonation flag.
type Resolver struct {
	flags FlagStore
}

// NewResolver creates a Resolver backed by the given flag store.
func NewResolver(flags FlagStore) *Resolver {
	return &Resolver{flags: flags}
}

// Start records target as the active impersonation for the admin in
// sess. Starting a second impersonation replaces the first.
func (r *Resolver) Start(ctx context.Context, sess model.Session, target model.ImpersonationTarget) error {
	if sess.Role != model.RoleAdmin {
		return eris.Wrapf(ErrNotAdmin, "identity: user %s", sess.UserID)
	}
	raw, err := json.Marshal(target)
	if err != nil {
		return eris.Wrap(err, "identity: marshal impersonation target")
	}
	if err := r.flags.SetImpersonationFlag(ctx, sess.UserID, raw); err != nil {
		return err
	}
	zap.L().Info("impersonation started",
		zap.String("admin_id", sess.UserID),
		zap.String("client_id", target.ID))
	return nil
}

// Stop clears the admin's impersonation flag. Stopping when none is
// active is a no-op.
func (r *Resolver) Stop(ctx context.Context, sess model.Session) error {
	if sess.Role != model.RoleAdmin {
		return eris.Wrapf(ErrNotAdmin, "identity: user %s", sess.UserID)
	}
	if err := r.flags.ClearImpersonationFlag(ctx, sess.UserID); err != nil {
		return err
	}
	zap.L().Info("impersonation stopped", zap.String("admin_id", sess.UserID))
	return nil
}

// Current returns the admin's active impersonation target, or nil when
// none is active. Corrupt flags read as no impersonation.
func (r *Resolver) Current(ctx context.Context, sess model.Session) (*model.ImpersonationTarget, error) {
	id, err := r.Resolve(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !id.Impersonating {
		return nil, nil
	}
	raw, err := r.flags.GetImpersonationFlag(ctx, sess.UserID)
	if err != nil || raw == nil {
		return nil, err
	}
	var target model.ImpersonationTarget
	if err := json.Unmarshal(raw, &target); err != nil {
		return nil, nil
	}
	return &target, nil
}

// Resolve computes the effective identity for one request. It is called
// fresh on every portal data fetch and never cached: the flag in the
// store is the single source of truth, so a Start or Stop takes effect
// on the next request without any session invalidation.
func (r *Resolver) Resolve(ctx context.Context, sess model.Session) (model.EffectiveIdentity, error) {
	self := model.EffectiveIdentity{
		SourceUserID: sess.UserID,
		SourceEmail:  sess.Email,
		DisplayEmail: sess.Email,
		DisplayName:  sess.DisplayName(),
	}

	raw, err := r.flags.GetImpersonationFlag(ctx, sess.UserID)
	if err != nil {
		return model.EffectiveIdentity{}, err
	}
	if raw == nil {
		return self, nil
	}

	// A flag on a non-admin account is stale state, most likely a role
	// downgrade after the impersonation started. Clear it and proceed as
	// the user themselves.
	if sess.Role != model.RoleAdmin {
		if err := r.flags.ClearImpersonationFlag(ctx, sess.UserID); err != nil {
			zap.L().Warn("failed to clear stale impersonation flag",
				zap.String("user_id", sess.UserID), zap.Error(err))
		}
		return self, nil
	}

	var target model.ImpersonationTarget
	if err := json.Unmarshal(raw, &target); err != nil || target.ContactEmail == "" {
		// Corrupt flag: repair by clearing and fall back to the admin's
		// own identity. The user sees their normal view, never an error.
		zap.L().Warn("clearing corrupt impersonation flag",
			zap.String("admin_id", sess.UserID), zap.Error(err))
		if cerr := r.flags.ClearImpersonationFlag(ctx, sess.UserID); cerr != nil {
			zap.L().Warn("failed to clear corrupt impersonation flag",
				zap.String("admin_id", sess.UserID), zap.Error(cerr))
		}
		return self, nil
	}

	return model.EffectiveIdentity{
		SourceUserID:  sess.UserID,
		SourceEmail:   sess.Email,
		Impersonating: true,
		DisplayEmail:  target.ContactEmail,
		DisplayName:   fmt.Sprintf("%s (%s)", target.CompanyName, target.ContactName),
	}, nil
}

package services

import (
	"github.com/ctfground/ctf-service/internal/models"
)

// Access policy for the permission tiers. Tier 0 (root) is the most
// trusted, tier 2 (player) the least. All checks are pure so they can
// be tested without storage.

// CanCreateUser decides whether actor may register a user at the
// requested tier. A nil actor is an anonymous registration.
func CanCreateUser(actor *models.User, requested models.Permission) error {
	if actor == nil {
		if requested != models.PermissionPlayer {
			return NewPermissionError(0, 0, "user", "create", "anonymous registration is limited to player tier")
		}
		return nil
	}
	if !actor.Permission.MoreTrustedThan(requested) {
		return NewPermissionError(actor.ID, 0, "user", "create", "requested tier is not below own tier")
	}
	return nil
}

// CanUpdateUser decides whether actor may update target, optionally
// moving it to a requested tier. Self-updates may never escalate;
// updates of others require strict seniority over both the target and
// any requested tier.
func CanUpdateUser(actor, target *models.User, requested *models.Permission) error {
	if actor.ID == target.ID {
		if requested != nil && requested.MoreTrustedThan(actor.Permission) {
			return NewPermissionError(actor.ID, target.ID, "user", "update", "cannot raise own tier")
		}
		return nil
	}
	if !actor.Permission.MoreTrustedThan(target.Permission) {
		return NewPermissionError(actor.ID, target.ID, "user", "update", "target is not below own tier")
	}
	if requested != nil && !actor.Permission.MoreTrustedThan(*requested) {
		return NewPermissionError(actor.ID, target.ID, "user", "update", "requested tier is not below own tier")
	}
	return nil
}

func CanDeleteUser(actor, target *models.User) error {
	if !actor.Permission.MoreTrustedThan(target.Permission) {
		return NewPermissionError(actor.ID, target.ID, "user", "delete", "target is not below own tier")
	}
	return nil
}

// CanCreateProblem allows root and setter tiers only.
func CanCreateProblem(actor *models.User) error {
	if !actor.Permission.MoreTrustedThan(models.PermissionPlayer) {
		return NewPermissionError(actor.ID, 0, "problem", "create", "player tier cannot author problems")
	}
	return nil
}

// CanModifyProblem covers update and delete. Setters touch only their
// own problems; root touches any.
func CanModifyProblem(actor *models.User, problem *models.Problem, action string) error {
	switch actor.Permission {
	case models.PermissionRoot:
		return nil
	case models.PermissionSetter:
		if problem.OwnerID != actor.ID {
			return NewPermissionError(actor.ID, problem.ID, "problem", action, "not the owner")
		}
		return nil
	default:
		return NewPermissionError(actor.ID, problem.ID, "problem", action, "player tier cannot modify problems")
	}
}

// ShouldRedactAnswer reports whether problem answers must be hidden
// from this viewer.
func ShouldRedactAnswer(actor *models.User) bool {
	return actor == nil || !actor.Permission.MoreTrustedThan(models.PermissionPlayer)
}

package services

import (
	"errors"
	"testing"

	"github.com/ctfground/ctf-service/internal/models"
)

func user(id uint, p models.Permission) *models.User {
	return &models.User{ID: id, Name: "u", Permission: p}
}

func TestCanCreateUser(t *testing.T) {
	tests := []struct {
		name      string
		actor     *models.User
		requested models.Permission
		allowed   bool
	}{
		{"anonymous registers player", nil, models.PermissionPlayer, true},
		{"anonymous cannot register setter", nil, models.PermissionSetter, false},
		{"anonymous cannot register root", nil, models.PermissionRoot, false},
		{"root creates setter", user(1, models.PermissionRoot), models.PermissionSetter, true},
		{"root creates player", user(1, models.PermissionRoot), models.PermissionPlayer, true},
		{"root cannot create root", user(1, models.PermissionRoot), models.PermissionRoot, false},
		{"setter creates player", user(1, models.PermissionSetter), models.PermissionPlayer, true},
		{"setter cannot create setter", user(1, models.PermissionSetter), models.PermissionSetter, false},
		{"setter cannot create root", user(1, models.PermissionSetter), models.PermissionRoot, false},
		{"player cannot create anyone", user(1, models.PermissionPlayer), models.PermissionPlayer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanCreateUser(tt.actor, tt.requested)
			if tt.allowed && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if !tt.allowed {
				if err == nil {
					t.Fatal("expected permission error")
				}
				if !errors.Is(err, ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
			}
		})
	}
}

func TestCanUpdateUser(t *testing.T) {
	setter := models.PermissionSetter
	root := models.PermissionRoot
	player := models.PermissionPlayer

	tests := []struct {
		name      string
		actor     *models.User
		target    *models.User
		requested *models.Permission
		allowed   bool
	}{
		{"self update no tier", user(1, player), user(1, player), nil, true},
		{"self keep tier", user(1, setter), user(1, setter), &setter, true},
		{"self demote", user(1, setter), user(1, setter), &player, true},
		{"self escalate", user(1, player), user(1, player), &setter, false},
		{"root updates setter", user(1, root), user(2, setter), nil, true},
		{"root promotes player to setter", user(1, root), user(2, player), &setter, true},
		{"root cannot promote to root", user(1, root), user(2, player), &root, false},
		{"setter cannot update setter", user(1, setter), user(2, setter), nil, false},
		{"setter updates player", user(1, setter), user(2, player), nil, true},
		{"player cannot update others", user(1, player), user(2, player), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanUpdateUser(tt.actor, tt.target, tt.requested)
			if tt.allowed != (err == nil) {
				t.Fatalf("allowed=%v, got err=%v", tt.allowed, err)
			}
		})
	}
}

func TestCanDeleteUser(t *testing.T) {
	if err := CanDeleteUser(user(1, models.PermissionRoot), user(2, models.PermissionPlayer)); err != nil {
		t.Fatalf("root should delete player: %v", err)
	}
	if err := CanDeleteUser(user(1, models.PermissionSetter), user(2, models.PermissionSetter)); err == nil {
		t.Fatal("setter must not delete setter")
	}
	if err := CanDeleteUser(user(1, models.PermissionPlayer), user(1, models.PermissionPlayer)); err == nil {
		t.Fatal("player must not delete itself via seniority rule")
	}
}

func TestCanModifyProblem(t *testing.T) {
	owned := &models.Problem{ID: 7, OwnerID: 2}

	if err := CanModifyProblem(user(1, models.PermissionRoot), owned, "update"); err != nil {
		t.Fatalf("root should modify any problem: %v", err)
	}
	if err := CanModifyProblem(user(2, models.PermissionSetter), owned, "update"); err != nil {
		t.Fatalf("owner setter should modify own problem: %v", err)
	}
	if err := CanModifyProblem(user(3, models.PermissionSetter), owned, "update"); err == nil {
		t.Fatal("setter must not modify a foreign problem")
	}
	if err := CanModifyProblem(user(2, models.PermissionPlayer), owned, "delete"); err == nil {
		t.Fatal("player must not modify problems")
	}
}

func TestShouldRedactAnswer(t *testing.T) {
	if !ShouldRedactAnswer(nil) {
		t.Fatal("anonymous viewers must not see answers")
	}
	if !ShouldRedactAnswer(user(1, models.PermissionPlayer)) {
		t.Fatal("players must not see answers")
	}
	if ShouldRedactAnswer(user(1, models.PermissionSetter)) {
		t.Fatal("setters may see answers")
	}
	if ShouldRedactAnswer(user(1, models.PermissionRoot)) {
		t.Fatal("root may see answers")
	}
}

package db

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

const (
	superAdminRole = "super_admin"

	seedUsername = "admin"
	seedEmail    = "admin@newsroom.local"
	seedFullName = "Super Administrator"
)

func defaultRoles() []Role {
	return []Role{
		{Name: superAdminRole, Description: "Unrestricted access to every resource"},
		{Name: "admin", Description: "Site administration"},
		{Name: "editor", Description: "Edit and publish any article"},
		{Name: "journalist", Description: "Write and submit own articles"},
		{Name: "contributor", Description: "Submit drafts for review"},
		{Name: "moderator", Description: "Moderate reader comments"},
		{Name: "registered_user", Description: "Comment and manage own profile"},
	}
}

func defaultPermissions() []Permission {
	resources := []string{"articles", "categories", "ads", "comments", "users", "navigation", "settings"}
	actions := []string{"create", "read", "update", "delete"}

	var perms []Permission
	for _, res := range resources {
		for _, act := range actions {
			perms = append(perms, Permission{
				Name:        res + "." + act,
				Resource:    res,
				Action:      act,
				Description: act + " " + res,
			})
		}
	}
	perms = append(perms,
		Permission{Name: "articles.publish", Resource: "articles", Action: "publish", Description: "publish articles"},
		Permission{Name: "comments.moderate", Resource: "comments", Action: "moderate", Description: "approve or reject comments"},
	)
	return perms
}

// SeedIfEmpty populates reference data exactly once across the fleet's
// lifetime. The existence of any user row is the idempotence gate: once one
// exists this performs zero writes. Per-row conflict tolerance below the gate
// only covers the window where a sibling process passed its own gate at
// nearly the same time; the database's uniqueness constraints decide the
// winner per row. Deliberately not one transaction: a crash mid-seed leaves a
// state the next call completes under the same tolerance policy.
func (d *DB) SeedIfEmpty(ctx context.Context, adminPassword string) error {
	var count int64
	if err := d.Gorm.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if adminPassword == "" {
		return errors.New("seed: ADMIN_PASSWORD is required to create the initial account")
	}

	for _, r := range defaultRoles() {
		role := r
		if err := d.Gorm.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).
			Create(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", role.Name, err)
		}
	}

	for _, p := range defaultPermissions() {
		perm := p
		if err := d.Gorm.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).
			Create(&perm).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", perm.Name, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := User{
		Username:     seedUsername,
		Email:        seedEmail,
		PasswordHash: string(hash),
		FullName:     seedFullName,
		IsActive:     true,
	}
	if err := d.Gorm.WithContext(ctx).Create(&admin).Error; err != nil {
		// A sibling process won the race between our gate check and this
		// insert; its account is the one that counts.
		if !IsUniqueViolation(err) {
			return fmt.Errorf("seed admin user: %w", err)
		}
		d.log.Info("seed admin user already present, continuing")
	}

	// Re-read both sides of the link so the race loser still wires the
	// winner's rows.
	var superAdmin Role
	if err := d.Gorm.WithContext(ctx).Where("name = ?", superAdminRole).First(&superAdmin).Error; err != nil {
		return fmt.Errorf("load %s role: %w", superAdminRole, err)
	}
	var adminRow User
	if err := d.Gorm.WithContext(ctx).Where("username = ?", seedUsername).First(&adminRow).Error; err != nil {
		return fmt.Errorf("load seed user: %w", err)
	}

	link := UserRole{UserID: adminRow.ID, RoleID: superAdmin.ID}
	if err := d.Gorm.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error; err != nil {
		return fmt.Errorf("link seed user to %s: %w", superAdminRole, err)
	}

	var perms []Permission
	if err := d.Gorm.WithContext(ctx).Find(&perms).Error; err != nil {
		return fmt.Errorf("list permissions: %w", err)
	}
	for _, p := range perms {
		grant := RolePermission{RoleID: superAdmin.ID, PermissionID: p.ID}
		if err := d.Gorm.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&grant).Error; err != nil {
			return fmt.Errorf("grant %s to %s: %w", p.Name, superAdminRole, err)
		}
	}

	d.log.Info("seed complete",
		"roles", len(defaultRoles()),
		"permissions", len(perms),
		"user", seedUsername,
	)
	return nil
}

package service

import (
	"errors"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedDefaults creates the default privileges, the ADMIN and CASHIER roles, and the
// first administrator. Existing rows are left alone, so it is safe on every start.
func SeedDefaults(privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, userRepo repository.UserRepository,
	adminEmail, adminPassword string, log *zap.Logger) error {
	log = logger.Or(log)
	adminEmail = normalizeEmail(adminEmail)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		return err
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		return err
	}

	allPrivileges, err := privilegeRepo.FindAll()
	if err != nil {
		return err
	}

	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		return err
	}
	if len(adminRole.Privileges) == 0 {
		if err := roleRepo.ReplacePrivileges(adminRole, allPrivileges); err != nil {
			return err
		}
		log.Info("ADMIN role assigned all privileges", zap.Int("count", len(allPrivileges)))
	}

	cashierRole, err := roleRepo.FindByCode(model.RoleCashier)
	if err != nil {
		return err
	}
	if len(cashierRole.Privileges) == 0 {
		cashierPrivileges, err := privilegeRepo.FindByCodes(model.CashierPrivileges)
		if err != nil {
			return err
		}
		if err := roleRepo.ReplacePrivileges(cashierRole, cashierPrivileges); err != nil {
			return err
		}
		log.Info("CASHIER role assigned privileges", zap.Int("count", len(cashierPrivileges)))
	}

	_, err = userRepo.FindByEmail(adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := &model.User{
		Email:      adminEmail,
		FullName:   "Administrator",
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(adminPassword); err != nil {
		return err
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}
	log.Info("admin user created", zap.String("email", adminEmail))
	return nil
}

package app

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "pawshop"

	hashedPassword := common.Sha256HashWithSalt(defaultPassword, common.GetSecretSalt())

	var operator domain.SysOpr
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     "N/A",
			Username:  superUsername,
			Password:  hashedPassword,
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

// checkSettings seeds the runtime tunables the pricing engine and dashboard
// read. Existing values are left alone.
func (a *Application) checkSettings() {
	defaults := []domain.SysConfig{
		{Type: SettingsBilling, Name: CfgFreeShippingThreshold, Value: "500000", Remark: "Free shipping at or above this subtotal"},
		{Type: SettingsBilling, Name: CfgShippingFee, Value: "25000", Remark: "Flat shipping fee below the threshold"},
		{Type: SettingsBilling, Name: CfgTaxRate, Value: "0", Remark: "Fixed tax rate applied on the subtotal"},
		{Type: SettingsShop, Name: CfgLowStockThreshold, Value: "10", Remark: "Stock level considered low on the dashboard"},
		{Type: SettingsShop, Name: CfgOrderMailEnabled, Value: "false", Remark: "Send order confirmation mails"},
	}

	for _, d := range defaults {
		var existing domain.SysConfig
		err := a.gormDB.Where("type = ? and name = ?", d.Type, d.Name).First(&existing).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		d.ID = common.UUIDint64()
		d.CreatedAt = time.Now()
		d.UpdatedAt = time.Now()
		if err := a.gormDB.Create(&d).Error; err != nil {
			zap.L().Error("failed to seed setting", zap.String("name", d.Name), zap.Error(err))
		}
	}
	a.configManager.Reload()
}

// checkDefaultCatalog seeds a starter category so the admin screens are not
// empty on first boot.
func (a *Application) checkDefaultCatalog() {
	var count int64
	if err := a.gormDB.Model(&domain.Category{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	now := time.Now()
	seed := []domain.Category{
		{Name: "Dog Food", Icon: "🐶"},
		{Name: "Cat Food", Icon: "🐱"},
		{Name: "Toys", Icon: "🧸"},
		{Name: "Accessories", Icon: "🦴"},
	}
	for _, c := range seed {
		c.ID = common.UUIDint64()
		c.Slug = common.Slugify(c.Name)
		c.CreatedAt = now
		c.UpdatedAt = now
		if err := a.gormDB.Create(&c).Error; err != nil {
			zap.L().Error("failed to seed category", zap.String("name", c.Name), zap.Error(err))
		}
	}
	zap.L().Info("seeded starter categories", zap.Int("count", len(seed)))
}

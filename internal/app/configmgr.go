package app

import (
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/pricing"
	"github.com/pawshop/pawshop/pkg/common"
)

// Settings categories
const (
	SettingsBilling = "billing"
	SettingsShop    = "shop"
)

// Billing setting names
const (
	CfgFreeShippingThreshold = "FreeShippingThreshold"
	CfgShippingFee           = "ShippingFee"
	CfgTaxRate               = "TaxRate"
)

// Shop setting names
const (
	CfgLowStockThreshold = "LowStockThreshold"
	CfgOrderMailEnabled  = "OrderMailEnabled"
)

// ConfigManager caches the sys_config table and hands out typed values.
// Writes go through Set so the cache never goes stale.
type ConfigManager struct {
	db    *gorm.DB
	mu    sync.RWMutex
	cache map[string]string
}

func NewConfigManager(a *Application) *ConfigManager {
	m := &ConfigManager{db: a.gormDB, cache: map[string]string{}}
	m.Reload()
	return m
}

func (m *ConfigManager) cacheKey(category, name string) string {
	return category + "/" + name
}

// Reload replaces the cache from the settings table.
func (m *ConfigManager) Reload() {
	var rows []domain.SysConfig
	if err := m.db.Find(&rows).Error; err != nil {
		zap.S().Errorf("settings reload failed: %s", err.Error())
		return
	}
	next := make(map[string]string, len(rows))
	for _, row := range rows {
		next[m.cacheKey(row.Type, row.Name)] = row.Value
	}
	m.mu.Lock()
	m.cache = next
	m.mu.Unlock()
}

func (m *ConfigManager) GetString(category, name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache[m.cacheKey(category, name)]
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *ConfigManager) GetFloat64(category, name string) float64 {
	return cast.ToFloat64(m.GetString(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// Set upserts a setting and refreshes the cache entry.
func (m *ConfigManager) Set(category, name, value string) error {
	var row domain.SysConfig
	err := m.db.Where("type = ? and name = ?", category, name).First(&row).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		err = m.db.Create(&domain.SysConfig{
			ID:        common.UUIDint64(),
			Type:      category,
			Name:      name,
			Value:     value,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).Error
	case err == nil:
		err = m.db.Model(&domain.SysConfig{}).Where("id = ?", row.ID).
			Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error
	}
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.cache[m.cacheKey(category, name)] = value
	m.mu.Unlock()
	return nil
}

// DecodeSection maps every setting of a category onto a struct using
// mapstructure's weak typing, so "25000" lands in a float64 field.
func (m *ConfigManager) DecodeSection(category string, out interface{}) error {
	m.mu.RLock()
	section := map[string]string{}
	prefix := category + "/"
	for key, value := range m.cache {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			section[key[len(prefix):]] = value
		}
	}
	m.mu.RUnlock()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(section)
}

// Rates assembles the current pricing constants, falling back to the
// defaults for anything unset.
func (m *ConfigManager) Rates() pricing.Rates {
	rates := pricing.DefaultRates()
	if v := m.GetString(SettingsBilling, CfgFreeShippingThreshold); v != "" {
		rates.FreeShippingThreshold = cast.ToFloat64(v)
	}
	if v := m.GetString(SettingsBilling, CfgShippingFee); v != "" {
		rates.ShippingFee = cast.ToFloat64(v)
	}
	if v := m.GetString(SettingsBilling, CfgTaxRate); v != "" {
		rates.TaxRate = cast.ToFloat64(v)
	}
	return rates
}

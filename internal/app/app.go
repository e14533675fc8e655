package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pawshop/pawshop/config"
	"github.com/pawshop/pawshop/internal/cart"
	"github.com/pawshop/pawshop/internal/catalog"
	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/notify"
	"github.com/pawshop/pawshop/internal/order"
	"github.com/pawshop/pawshop/internal/storage"
	"github.com/pawshop/pawshop/pkg/metrics"
)

type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB
	sessionStore  *storage.BlobStore
	bus           EventBus.Bus
	sched         *cron.Cron
	configManager *ConfigManager
	cartStore     *cart.Store
	orderHistory  *order.History
	orderFactory  *order.Factory
	catalogSvc    *catalog.Service
	productCache  *catalog.ProductCache
	mailer        *notify.Mailer
}

// Ensure Application implements all interfaces
var (
	_ DBProvider            = (*Application)(nil)
	_ ConfigProvider        = (*Application)(nil)
	_ SettingsProvider      = (*Application)(nil)
	_ SchedulerProvider     = (*Application)(nil)
	_ BusProvider           = (*Application)(nil)
	_ ShopProvider          = (*Application)(nil)
	_ ConfigManagerProvider = (*Application)(nil)
	_ AppContext            = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

func (a *Application) Cart() *cart.Store {
	return a.cartStore
}

func (a *Application) Orders() *order.History {
	return a.orderHistory
}

func (a *Application) OrderFactory() *order.Factory {
	return a.orderFactory
}

func (a *Application) Catalog() *catalog.Service {
	return a.catalogSvc
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger(cfg)

	cfg.InitDirs()

	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Debug)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.sessionStore, err = storage.Open(filepath.Join(cfg.System.Workdir, "data", "session.db"))
	if err != nil {
		zap.S().Fatalf("session store open failed: %v", err)
	}

	a.bus = EventBus.New()
	a.configManager = NewConfigManager(a)

	a.checkSuper()
	a.checkSettings()
	a.checkDefaultCatalog()

	a.cartStore = cart.NewStore(a.sessionStore, a.bus, a.configManager.Rates)
	a.orderHistory = order.NewHistory(a.sessionStore)
	a.orderFactory = order.NewFactory(a.cartStore, a.orderHistory, a.bus)

	productRepo := catalog.NewGormProductRepository(a.gormDB)
	categoryRepo := catalog.NewGormCategoryRepository(a.gormDB)
	a.productCache = catalog.NewProductCache(productRepo, catalog.DefaultProductCacheTTL)
	a.catalogSvc = catalog.NewService(productRepo, categoryRepo).WithCache(a.productCache)

	a.mailer, err = notify.NewMailer(cfg.Smtp, a.gormDB, a.bus, func() bool {
		return a.configManager.GetBool(SettingsShop, CfgOrderMailEnabled)
	})
	if err != nil {
		zap.S().Warnf("mailer init failed: %v", err)
	}

	a.initEventCounters()
	a.initJob()
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	var err error
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

func getDatabase(dbcfg config.DBConfig, debug bool) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
		dbcfg.Host, dbcfg.Port, dbcfg.User, dbcfg.Passwd, dbcfg.Name, time.Local.String())

	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		zap.S().Fatalf("database connect failed: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(dbcfg.MaxConn)
		sqlDB.SetMaxIdleConns(dbcfg.IdleConn)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// ConfigMgr returns the configuration manager
func (a *Application) ConfigMgr() *ConfigManager {
	return a.configManager
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, key string) string {
	return a.configManager.GetString(category, key)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, key string) int64 {
	return a.configManager.GetInt64(category, key)
}

// GetSettingsFloat64Value retrieves a float64 configuration value
func (a *Application) GetSettingsFloat64Value(category, key string) float64 {
	return a.configManager.GetFloat64(category, key)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, key string) bool {
	return a.configManager.GetBool(category, key)
}

// initEventCounters feeds order and cart activity into the metrics store.
func (a *Application) initEventCounters() {
	_ = a.bus.Subscribe(order.TopicCreated, func(o domain.Order) {
		metrics.IncrCounter("shop_orders_created", 1)
		metrics.SetGauge("shop_last_order_total", int64(o.Total))
	})
	_ = a.bus.Subscribe(cart.TopicChanged, func(c domain.Cart) {
		metrics.SetGauge("shop_cart_items", int64(c.ItemCount()))
	})
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.productCache != nil {
		a.productCache.Stop()
	}
	if a.mailer != nil {
		a.mailer.Close()
	}
	if a.sessionStore != nil {
		_ = a.sessionStore.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}

package config

import (
	"strings"

	"table-order-api/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds all runtime settings, read once at startup
type Config struct {
	Port               string `mapstructure:"PORT"`
	GinMode            string `mapstructure:"GIN_MODE"`
	DBPath             string `mapstructure:"DB_PATH"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	BaseURL            string `mapstructure:"BASE_URL"`
	UploadDir          string `mapstructure:"UPLOAD_DIR"`
	SuperAdminEmail    string `mapstructure:"SUPER_ADMIN_EMAIL"`
	SuperAdminPassword string `mapstructure:"SUPER_ADMIN_PASSWORD"`
}

var (
	C  *Config
	DB *gorm.DB
)

// JWTSecret returns the token signing key
func JWTSecret() []byte {
	return []byte(C.JWTSecret)
}

// Load reads settings from an optional .env file and the environment.
// Environment variables win over file values.
func Load() {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("DB_PATH", "table_order.db")
	viper.SetDefault("JWT_SECRET", "table_order_super_secret_2026")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("SUPER_ADMIN_EMAIL", "super@tableorder.local")
	viper.SetDefault("SUPER_ADMIN_PASSWORD", "changeme")

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional; defaults plus environment are enough
		log.Debug().Err(err).Msg("no .env file, using environment and defaults")
	}

	cf := &Config{}
	if err := viper.Unmarshal(cf); err != nil {
		log.Fatal().Err(err).Msg("failed to parse configuration")
	}
	C = cf
}

// InitDB opens the database and migrates all models
func InitDB() {
	var err error
	DB, err = gorm.Open(sqlite.Open(C.DBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	err = DB.AutoMigrate(
		&models.Restaurant{},
		&models.Food{},
		&models.Table{},
		&models.Staff{},
		&models.Order{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	log.Info().Str("db", C.DBPath).Msg("database connected and migrated")
}

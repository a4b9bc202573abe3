package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

var ErrInvalid = errors.New("invalid config")

// Config de la API y del CLI. Fuentes, de menor a mayor prioridad:
// defaults, archivo YAML (opcional), .env, variables de entorno.
type Config struct {
	AppName string `mapstructure:"app_name"`
	Port    string `mapstructure:"port"`

	// Storage: file | memory | postgres
	Storage   string `mapstructure:"storage"`
	DataDir   string `mapstructure:"data_dir"`
	DBDSN     string `mapstructure:"db_dsn"`
	Delimiter string `mapstructure:"delimiter"`

	// OwnersSeed: YAML opcional con dueños iniciales (repo en memoria).
	OwnersSeed string `mapstructure:"owners_seed"`

	Directory DirectoryConfig `mapstructure:"directory"`
	Log       LogConfig       `mapstructure:"log"`
}

// DirectoryConfig: si BaseURL está vacío los dueños se resuelven localmente.
type DirectoryConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Defaults() Config {
	return Config{
		AppName:   "animal-registry",
		Port:      "8080",
		Storage:   StorageFile,
		DataDir:   "data",
		Delimiter: ";",
		Directory: DirectoryConfig{CacheTTL: 10 * time.Minute},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load lee la config. configFile puede venir vacío.
// Las env vars usan el nombre de la clave en mayúsculas con "_" (DIRECTORY_BASE_URL, LOG_LEVEL...).
func Load(configFile string) (Config, error) {
	// .env es opcional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("%w: storage=postgres requires db_dsn", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalid, c.Storage)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("%w: port required", ErrInvalid)
	}
	return nil
}

// Addr para http.Server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// setDefaults registra todas las claves: AutomaticEnv solo ve las claves conocidas al hacer Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("app_name", d.AppName)
	v.SetDefault("port", d.Port)
	v.SetDefault("storage", d.Storage)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("db_dsn", d.DBDSN)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("owners_seed", d.OwnersSeed)
	v.SetDefault("directory.base_url", d.Directory.BaseURL)
	v.SetDefault("directory.api_key", d.Directory.APIKey)
	v.SetDefault("directory.cache_ttl", d.Directory.CacheTTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

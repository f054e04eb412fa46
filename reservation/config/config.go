package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/reservation-service/pkg/kafka"
	"github.com/Astemirdum/reservation-service/pkg/logger"
	"github.com/Astemirdum/reservation-service/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"RESERVATION_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"RESERVATION_HTTP_PORT" default:"8070"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Database postgres.DB  `yaml:"db"`
	Kafka    kafka.Config `yaml:"kafka"`
	Log      logger.Log   `yaml:"log"`
	// Storage selects the repository adapter: postgres or memory.
	Storage string `yaml:"storage" envconfig:"RESERVATION_STORAGE"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		config, err := load(ops...)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func load(ops ...Option) (*Config, error) {
	var config Config
	for _, op := range ops {
		op(&config)
	}
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}
	if config.Storage == "" {
		config.Storage = StoragePostgres
	}
	switch config.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("unknown storage %q", config.Storage)
	}
	return &config, nil
}

func printConfig(cfg *Config) {
	c := *cfg
	c.Database.Password = "***"
	jscfg, _ := json.MarshalIndent(c, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}

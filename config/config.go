package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Version  string `yaml:"Version" validate:"required"`
	LogLevel string `yaml:"LogLevel" validate:"required"`
	LogFile  string `yaml:"LogFile"`

	*Telegram `yaml:"Telegram" validate:"required"`
	*DB       `yaml:"DB" validate:"required"`
	*Storage  `yaml:"Storage" validate:"required"`
	*Disk     `yaml:"Disk" validate:"required"`

	Render  Render  `yaml:"Render"`
	Metrics Metrics `yaml:"Metrics"`
}

type Telegram struct {
	Token         string        `yaml:"Token" validate:"required"`
	OperatorID    int           `yaml:"OperatorID" validate:"required"`
	OperatorPhone string        `yaml:"OperatorPhone" validate:"required"`
	Channel       string        `yaml:"Channel"`
	Timeout       time.Duration `yaml:"Timeout"`
}

type DB struct {
	Host     string        `yaml:"Host" validate:"required"`
	Port     int           `yaml:"Port" validate:"required"`
	User     string        `yaml:"User" validate:"required"`
	Password string        `yaml:"Password" validate:"required"`
	Name     string        `yaml:"Name" validate:"required"`
	SSL      bool          `yaml:"SSL"`
	Timeout  time.Duration `yaml:"Timeout"`
}

// Storage holds local artifact copies. PublicURL is where the stored requests
// can be browsed; stickers carry it as a QR code.
type Storage struct {
	Dir       string `yaml:"Dir" validate:"required"`
	PublicURL string `yaml:"PublicURL" validate:"required,url"`
}

// Disk is the Yandex.Disk archive.
type Disk struct {
	Token    string        `yaml:"Token" validate:"required"`
	Folder   string        `yaml:"Folder" validate:"required"`
	Endpoint string        `yaml:"Endpoint"`
	Timeout  time.Duration `yaml:"Timeout"`
}

type Render struct {
	FontPath string `yaml:"FontPath"`
}

type Metrics struct {
	Listen string `yaml:"Listen"`
}

const (
	DefaultTelegramTimeout = 90 * time.Second
	DefaultDBTimeout       = 10 * time.Second
	DefaultDiskTimeout     = time.Minute
	DefaultDiskEndpoint    = "https://cloud-api.yandex.net"
	DefaultChannel         = "t.me/robotfixservice"
)

// Create PostgreSQL database connection string
func (db *DB) ConnectionString() string {
	uri := fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s",
		db.Host, db.Port,
		db.User, db.Name,
		db.Password,
	)

	if db.SSL {
		uri += " sslmode=require"
	} else {
		uri += " sslmode=disable"
	}

	return uri
}

// Init new config with validation. Secrets from the environment (or a .env
// file next to the binary) take precedence over the file.
func NewConfig(p string) (*Config, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}

	c := Config{
		Telegram: &Telegram{},
		DB:       &DB{},
		Storage:  &Storage{},
		Disk:     &Disk{},
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	_ = godotenv.Load()
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.setDefaults()

	validate := validator.New()
	if err := validate.Struct(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("MASTER_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MASTER_ID: %v", err)
		}
		c.Telegram.OperatorID = id
	}
	if v := os.Getenv("MASTER_PHONE"); v != "" {
		c.Telegram.OperatorPhone = v
	}
	if v := os.Getenv("YANDEX_DISK_TOKEN"); v != "" {
		c.Disk.Token = v
	}
	if v := os.Getenv("YANDEX_DISK_FOLDER"); v != "" {
		c.Disk.Folder = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}

	return nil
}

func (c *Config) setDefaults() {
	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = DefaultTelegramTimeout
	}
	if c.Telegram.Channel == "" {
		c.Telegram.Channel = DefaultChannel
	}
	if c.DB.Timeout == 0 {
		c.DB.Timeout = DefaultDBTimeout
	}
	if c.Disk.Timeout == 0 {
		c.Disk.Timeout = DefaultDiskTimeout
	}
	if c.Disk.Endpoint == "" {
		c.Disk.Endpoint = DefaultDiskEndpoint
	}
}

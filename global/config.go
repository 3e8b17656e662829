package global

import (
	"crypto/ed25519"
	"os"

	"github.com/go-redis/redis_rate/v10"
	"gopkg.in/yaml.v3"
)

// Conf global config
var Conf Config

// Server signing keypair (loaded from serverKeysPath in conf.yaml)
var PublicKey ed25519.PublicKey
var PrivateKey ed25519.PrivateKey

// Global rate limiter
var RateLimiter *redis_rate.Limiter

type Config struct {
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	Scheme     string           `yaml:"scheme"`
	Mode       string           `yaml:"mode"` // debug or release
	Cardlink   CardlinkConfig   `yaml:"cardlink"`
	CouchDB    CouchDBConfig    `yaml:"couchdb"`
	Redis      RedisConfig      `yaml:"redis"`
	Queue      QueueConfig      `yaml:"queue"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Mailgun    MailgunConfig    `yaml:"mailgun"`
	Storage    StorageConfig    `yaml:"storage"`
	WalletPass WalletPassConfig `yaml:"walletpass"`
	Statistics StatisticsConfig `yaml:"statistics"`
}

type CardlinkConfig struct {
	ServerDomain   string `yaml:"serverDomain"`   // public domain of this server (used in QR payloads and tokens)
	ServerKeysPath string `yaml:"serverKeysPath"` // path to the ed25519 signing keypair json
	CardBaseURL    string `yaml:"cardBaseUrl"`    // public card page base URL encoded into QR codes
	DefaultColor   string `yaml:"defaultColor"`   // fallback accent color when a profile has none
}

type CouchDBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Scheme   string `yaml:"scheme"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type QueueConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type PrometheusConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type MailgunConfig struct {
	Domain     string `yaml:"domain"`
	SendApiKey string `yaml:"sendapikey"`
	Sender     string `yaml:"sender"` // from address for notification emails
}

type StorageConfig struct {
	Type   string `yaml:"type"`
	Key    string `yaml:"key"`
	Secret string `yaml:"secret"`
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
}

type WalletPassConfig struct {
	URL    string `yaml:"url"` // third party pass creation endpoint
	ApiKey string `yaml:"apikey"`
}

type StatisticsConfig struct {
	FlushMinutes int `yaml:"flushMinutes"` // how often scan/save counters flush to CouchDB
}

// LoadConfig reads the yaml configuration from the given path into conf
func LoadConfig(path string, conf *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(content, conf)
}

package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures the full runtime configuration for the relay service.
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Storage StorageConfig
	Kafka   KafkaConfig
	Tracing TracingConfig
	Upload  UploadConfig
	Bus     BusConfig
	Static  StaticConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"alert-relay"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"0.1.0"`
	LogLevel    string `env:"APP_LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":5000"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
}

// StorageConfig selects and configures the persistence backend. Provider is
// "local" for the on-disk adapter or "s3"/"minio" for the object store.
type StorageConfig struct {
	Provider     string        `env:"STORAGE_PROVIDER" envDefault:"local"`
	LocalDir     string        `env:"STORAGE_LOCAL_DIR" envDefault:"uploads"`
	URLPrefix    string        `env:"STORAGE_URL_PREFIX" envDefault:"/uploads"`
	Endpoint     string        `env:"STORAGE_ENDPOINT" envDefault:"localhost:9000"`
	Region       string        `env:"STORAGE_REGION" envDefault:"us-east-1"`
	Bucket       string        `env:"STORAGE_BUCKET" envDefault:"relay-recordings"`
	AccessKey    string        `env:"STORAGE_ACCESS_KEY" envDefault:""`
	SecretKey    string        `env:"STORAGE_SECRET_KEY" envDefault:""`
	UseSSL       bool          `env:"STORAGE_USE_SSL" envDefault:"false"`
	SignedURLTTL time.Duration `env:"STORAGE_SIGNED_URL_TTL" envDefault:"15m"`
}

// KafkaConfig configures the optional downstream event mirror. The mirror is
// disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers          []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic            string        `env:"KAFKA_EVENTS_TOPIC" envDefault:"relay.events"`
	Retries          int           `env:"KAFKA_RETRIES" envDefault:"3"`
	CompressionCodec string        `env:"KAFKA_COMPRESSION_CODEC" envDefault:"snappy"`
	BatchSize        int           `env:"KAFKA_BATCH_SIZE" envDefault:"100"`
	BatchTimeout     time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"1s"`
}

type TracingConfig struct {
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ResourceAttr string  `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:"service.namespace=alert-relay"`
}

type UploadConfig struct {
	MaxSizeBytes      int64 `env:"UPLOAD_MAX_SIZE_BYTES" envDefault:"104857600"`
	MultipartMemBytes int64 `env:"UPLOAD_MULTIPART_MEM_BYTES" envDefault:"10485760"`
}

type BusConfig struct {
	SessionBuffer int `env:"BUS_SESSION_BUFFER" envDefault:"32"`
}

// StaticConfig points at the dashboard assets served from the root path.
// An empty Dir disables static serving.
type StaticConfig struct {
	Dir string `env:"STATIC_DIR" envDefault:"public"`
}

// Load reads an optional .env file and parses environment variables into Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env    string       `yaml:"env" env-default:"local"`
	DSN    string       `yaml:"dsn" env:"DSN" env-required:"true"`
	HTTP   HTTPConfig   `yaml:"http"`
	Token  TokenConfig  `yaml:"token"`
	S3     S3Config     `yaml:"s3"`
	Redis  RedisConfig  `yaml:"redis"`
	Assets AssetsConfig `yaml:"assets"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env-default:"8080"`
}

type TokenConfig struct {
	AccessSecret  string        `yaml:"access_secret" env:"ACCESS_SECRET" env-required:"true"`
	AccessTTL     time.Duration `yaml:"access_ttl" env-default:"15m"`
	RefreshSecret string        `yaml:"refresh_secret" env:"REFRESH_SECRET" env-required:"true"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env-default:"168h"`
}

type S3Config struct {
	Region          string `yaml:"region" env-default:"us-east-1"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	Bucket          string `yaml:"bucket" env-default:"avatars"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

type AssetsConfig struct {
	URLTTL         time.Duration `yaml:"url_ttl" env-default:"15m"`
	ResolveTimeout time.Duration `yaml:"resolve_timeout" env-default:"5s"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}

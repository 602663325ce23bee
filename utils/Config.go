package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Client ClientConfig `mapstructure:"client" validate:"required"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	HttpPort   string `mapstructure:"httpPort" validate:"required,numeric"`
	OutputDir  string `mapstructure:"outputDir" validate:"required"`
	OutputName string `mapstructure:"outputName" validate:"required"`
	// memory 或 redis
	Store         string `mapstructure:"store" validate:"oneof=memory redis"`
	MaxChunkBytes int64  `mapstructure:"maxChunkBytes" validate:"gt=0"`
	// 一次录制最多的分片数
	MaxChunks int `mapstructure:"maxChunks" validate:"gt=0"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"keyPrefix"`
	// 合并结果发布的频道，为空则不发布
	Channel string `mapstructure:"channel"`
}

type ClientConfig struct {
	ServerURL   string        `mapstructure:"serverURL" validate:"required,url"`
	MaxAttempts int           `mapstructure:"maxAttempts" validate:"gte=1"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// 由 GetConfInt 解析
	ChunkSize int `mapstructure:"-" validate:"gt=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// LoadConfig 读取配置文件与 RECORDER_ 前缀的环境变量，path 为空时在当前目录查找 config.yaml
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}
	v.SetEnvPrefix("RECORDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefault(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// 没有配置文件时使用默认值
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return GetApplicationConfig(v)
}

// GetApplicationConfig 将 viper 中的配置解析为 Config 并校验
func GetApplicationConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	chunkSize, err := GetConfInt(v, "client.chunkSize", 1<<20)
	if err != nil {
		return nil, err
	}
	config.Client.ChunkSize = chunkSize

	if err := validator.New().Struct(&config); err != nil {
		return nil, err
	}
	if config.Server.Store == "redis" && config.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required when server.store is redis")
	}
	return &config, nil
}

func setDefault(v *viper.Viper) {
	v.SetDefault("server.httpPort", "3001")
	v.SetDefault("server.outputDir", "uploads")
	v.SetDefault("server.outputName", "final_video.webm")
	v.SetDefault("server.store", "memory")
	v.SetDefault("server.maxChunkBytes", 64<<20)
	v.SetDefault("server.maxChunks", 100000)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 6)
	v.SetDefault("redis.keyPrefix", "record:")
	v.SetDefault("redis.channel", "")

	v.SetDefault("client.serverURL", "http://localhost:3001")
	v.SetDefault("client.maxAttempts", 3)
	v.SetDefault("client.timeout", "30s")
	v.SetDefault("client.chunkSize", "1 << 20")

	v.SetDefault("log.level", "info")
}

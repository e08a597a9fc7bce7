package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 配置信息
type Config struct {
	App             *App             `json:"app" yaml:"app"`
	Log             *Log             `json:"log" yaml:"log"`
	Redis           *Redis           `json:"redis" yaml:"redis"`
	MySQL           *MySQL           `json:"mysql" yaml:"mysql"`
	Jwt             *Jwt             `json:"jwt" yaml:"jwt"`
	Server          *Server          `json:"server" yaml:"server"`
	RocketMQ        *RocketMQConfig  `json:"rocketmq" yaml:"rocketmq"`
	WechatPayConfig *WechatPayConfig `json:"wechat_pay" yaml:"wechat_pay"`
	Gateway         *Gateway         `json:"gateway" yaml:"gateway"`
	Sync            *Sync            `json:"sync" yaml:"sync"`
	Reconcile       *Reconcile       `json:"reconcile" yaml:"reconcile"`
}

type Server struct {
	Http int `json:"http" yaml:"http"`
}

// envOverride 敏感信息允许通过环境变量覆盖，不写进 yaml
type envOverride struct {
	HttpPort       int    `env:"RECON_HTTP_PORT"`
	MySQLPassword  string `env:"RECON_MYSQL_PASSWORD"`
	RedisPassword  string `env:"RECON_REDIS_PASSWORD"`
	JwtSecret      string `env:"RECON_JWT_SECRET"`
	WechatAPIv3Key string `env:"RECON_WECHAT_APIV3_KEY"`
}

func New(filename string) *Config {
	// .env 不存在时忽略
	_ = godotenv.Load()

	content, err := os.ReadFile(filename)
	if err != nil {
		panic(err)
	}

	conf, err := Parse(content)
	if err != nil {
		panic(fmt.Sprintf("解析 %s 读取错误: %v", filename, err))
	}

	return conf
}

// Parse 解析 yaml 内容，补默认值并应用环境变量覆盖
func Parse(content []byte) (*Config, error) {
	var conf Config
	if err := yaml.Unmarshal(content, &conf); err != nil {
		return nil, err
	}
	conf.applyDefaults()

	var ov envOverride
	if err := env.Parse(&ov); err != nil {
		return nil, err
	}
	conf.applyEnv(ov)

	return &conf, nil
}

func (c *Config) applyDefaults() {
	if c.App == nil {
		c.App = &App{Env: "dev"}
	}
	if c.Log == nil {
		c.Log = &Log{}
	}
	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Http == 0 {
		c.Server.Http = 8080
	}
	if c.Jwt == nil {
		c.Jwt = &Jwt{}
	}
	if c.Gateway == nil {
		c.Gateway = &Gateway{}
	}
	if c.Gateway.RateLimit <= 0 {
		c.Gateway.RateLimit = 20
	}
	if c.Gateway.Burst <= 0 {
		c.Gateway.Burst = 5
	}
	if c.Gateway.Timeout <= 0 {
		c.Gateway.Timeout = 10 * time.Second
	}
	if c.Sync == nil {
		c.Sync = &Sync{}
	}
	if c.Sync.Concurrency <= 0 {
		c.Sync.Concurrency = 8
	}
	if c.Sync.RecordTimeout <= 0 {
		c.Sync.RecordTimeout = 5 * time.Second
	}
	if c.Sync.PageSize <= 0 {
		c.Sync.PageSize = 500
	}
	if c.RocketMQ == nil {
		c.RocketMQ = &RocketMQConfig{}
	}
	if c.Reconcile == nil {
		c.Reconcile = &Reconcile{}
	}
	if c.Reconcile.Timezone == "" {
		c.Reconcile.Timezone = "Asia/Shanghai"
	}
}

func (c *Config) applyEnv(ov envOverride) {
	if ov.HttpPort > 0 {
		c.Server.Http = ov.HttpPort
	}
	if ov.MySQLPassword != "" && c.MySQL != nil {
		c.MySQL.Password = ov.MySQLPassword
	}
	if ov.RedisPassword != "" && c.Redis != nil {
		c.Redis.Password = ov.RedisPassword
	}
	if ov.JwtSecret != "" {
		c.Jwt.Secret = ov.JwtSecret
	}
	if ov.WechatAPIv3Key != "" && c.WechatPayConfig != nil {
		c.WechatPayConfig.MchAPIv3Key = ov.WechatAPIv3Key
	}
}

// Debug 调试模式
func (c *Config) Debug() bool {
	return c.App.Debug
}

package config

type App struct {
	Env   string `json:"env" yaml:"env"`
	Debug bool   `json:"debug" yaml:"debug"`
	Node  int64  `json:"node" yaml:"node"` // snowflake 节点号，多实例部署时必须不同
}

// Log 日志输出，File 为空时只输出到 stdout
type Log struct {
	Level      string `json:"level" yaml:"level"`
	File       string `json:"file" yaml:"file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
}

// Jwt 后台管理员令牌
type Jwt struct {
	Secret string `json:"secret" yaml:"secret"`
}

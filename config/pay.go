package config

import "time"

type WechatPayConfig struct {
	AppID                      string `yaml:"app_id"`                        // 应用ID
	MchID                      string `yaml:"mch_id"`                        // 商户号
	MchCertificateSerialNumber string `yaml:"mch_certificate_serial_number"` // 商户证书序列号
	MchAPIv3Key                string `yaml:"mch_apiv3_key"`                 // APIv3密钥
	MchPrivateKeyPath          string `yaml:"mch_private_key_path"`          // 商户私钥文件路径
	RefundNotifyURL            string `yaml:"refund_notify_url"`             // 退款回调URL
}

// HttpGateway 通用 REST 网关（支付宝、银行通道走统一的内部支付网关）
type HttpGateway struct {
	BaseURL string `yaml:"base_url"`
	AppKey  string `yaml:"app_key"`
}

// Gateway 网关限流与超时，未配置的通道视为"无网关"，退款走本地降级
type Gateway struct {
	RateLimit float64       `yaml:"rate_limit"` // 每秒请求数
	Burst     int           `yaml:"burst"`
	Timeout   time.Duration `yaml:"timeout"`
	Alipay    *HttpGateway  `yaml:"alipay"`
	Bank      *HttpGateway  `yaml:"bank"`
}

// Sync 批量同步
type Sync struct {
	Concurrency   int           `yaml:"concurrency"`    // 同时在途的网关查询数
	RecordTimeout time.Duration `yaml:"record_timeout"` // 单条记录超时
	PageSize      int           `yaml:"page_size"`      // 候选集分页拉取大小
}

// Reconcile 对账报表按固定时区切日，不使用客户端时间
type Reconcile struct {
	Timezone string        `yaml:"timezone"`
	CacheTTL time.Duration `yaml:"cache_ttl"` // 0 表示不缓存
}

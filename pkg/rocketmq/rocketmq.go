package rocketmq

import (
	"Reconcile/config"
	"Reconcile/pkg/log"
	"context"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/apache/rocketmq-client-go/v2/rlog"
	"go.uber.org/zap"
)

type Rocketmq struct {
	RocketmqProducer rocketmq.Producer
}

func init() {
	rlog.SetLogLevel("error")
}

// NewRocketmq 未配置 nameserver 时返回 nil，调用方降级为不发消息
func NewRocketmq(conf *config.Config) (*Rocketmq, func(), error) {
	cfg := conf.RocketMQ
	if cfg == nil || len(cfg.NameServer) == 0 {
		log.L.Info("rocketmq nameserver not configured, producer disabled")
		return nil, func() {}, nil
	}

	p, err := InitProducer(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := p.Shutdown(); err != nil {
			log.L.Warn("shutdown rocketmq producer", zap.Error(err))
		}
	}
	return &Rocketmq{RocketmqProducer: p}, cleanup, nil
}

func InitProducer(cfg *config.RocketMQConfig) (rocketmq.Producer, error) {
	retry := cfg.Producer.Retry
	if retry <= 0 {
		retry = 2
	}
	p, err := rocketmq.NewProducer(
		producer.WithNameServer(cfg.NameServer),
		producer.WithGroupName(cfg.Producer.Group),
		producer.WithRetry(retry),
	)
	if err != nil {
		return nil, err
	}
	if err = p.Start(); err != nil {
		return nil, err
	}
	log.L.Info("init producer success")
	return p, nil
}

// SendAsync 异步发送，结果只记日志
func (p *Rocketmq) SendAsync(ctx context.Context, topic string, key string, body []byte) error {
	msg := primitive.NewMessage(topic, body)
	msg.WithKeys([]string{key})

	return p.RocketmqProducer.SendAsync(ctx, func(_ context.Context, res *primitive.SendResult, err error) {
		if err != nil {
			log.L.Error("async send message failed", zap.String("topic", topic), zap.String("key", key), zap.Error(err))
			return
		}
		log.L.Info("async send message success", zap.String("msg_id", res.MsgID))
	}, msg)
}

package service

import (
	"Reconcile/config"
	"Reconcile/pkg/rocketmq"
	"Reconcile/types"
	"context"
	"encoding/json"
)

// RefundNotifier 通知外部权益系统，发送失败不影响退款结果
type RefundNotifier interface {
	RefundCompleted(ctx context.Context, evt *types.RefundEvent) error
}

type NopNotifier struct{}

func (NopNotifier) RefundCompleted(context.Context, *types.RefundEvent) error { return nil }

type MQNotifier struct {
	MQ    *rocketmq.Rocketmq
	Topic string
}

func NewRefundNotifier(conf *config.Config, mq *rocketmq.Rocketmq) RefundNotifier {
	if mq == nil || conf.RocketMQ.RefundTopic == "" {
		return NopNotifier{}
	}
	return &MQNotifier{MQ: mq, Topic: conf.RocketMQ.RefundTopic}
}

func (n *MQNotifier) RefundCompleted(ctx context.Context, evt *types.RefundEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return n.MQ.SendAsync(ctx, n.Topic, evt.RefundNo, body)
}

package gateway

import (
	"Reconcile/config"
	"Reconcile/pkg/log"
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Router 按支付方式选择网关，未配置的方式返回 nil
type Router struct {
	clients map[string]Client
}

func NewRouter(cfg *config.Config) *Router {
	r := &Router{clients: make(map[string]Client)}
	gw := cfg.Gateway

	if cfg.WechatPayConfig != nil && cfg.WechatPayConfig.MchID != "" {
		wc, err := NewWechat(context.Background(), cfg.WechatPayConfig)
		if err != nil {
			// 不阻断启动，退款将走本地降级
			log.L.Error("init wechat gateway failed", zap.Error(err))
		} else {
			r.Register("wechat", NewLimited(wc, gw.RateLimit, gw.Burst))
		}
	}

	httpClient := &http.Client{Timeout: gw.Timeout}
	if gw.Alipay != nil && gw.Alipay.BaseURL != "" {
		r.Register("alipay", NewLimited(NewHttp("alipay", gw.Alipay, httpClient), gw.RateLimit, gw.Burst))
	}
	if gw.Bank != nil && gw.Bank.BaseURL != "" {
		r.Register("bank", NewLimited(NewHttp("bank", gw.Bank, httpClient), gw.RateLimit, gw.Burst))
	}

	log.L.Info("gateway router ready", zap.Strings("methods", r.Methods()))
	return r
}

func NewStaticRouter(clients map[string]Client) *Router {
	r := &Router{clients: make(map[string]Client, len(clients))}
	for method, c := range clients {
		r.Register(method, c)
	}
	return r
}

func (r *Router) Register(method string, c Client) {
	if c == nil {
		return
	}
	r.clients[method] = c
}

func (r *Router) For(method string) Client {
	if r == nil {
		return nil
	}
	return r.clients[method]
}

func (r *Router) Methods() []string {
	methods := make([]string, 0, len(r.clients))
	for _, m := range []string{"alipay", "wechat", "bank"} {
		if _, ok := r.clients[m]; ok {
			methods = append(methods, m)
		}
	}
	return methods
}

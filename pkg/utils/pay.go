package utils

import (
	"Reconcile/pkg/snowflake"
	"fmt"
	"time"
)

const refundSalt = "reconcile-refund"

// GenerateRefundNo 商户退款单号，同时作为网关侧幂等键，长度不超过 32
func GenerateRefundNo(prefix string) string {
	day := time.Now().Format("20060102")
	return fmt.Sprintf("%s%s%s", prefix, day, GenHashID(refundSalt, snowflake.GenID()))
}

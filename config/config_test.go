package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	conf, err := Parse([]byte("app:\n  env: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", conf.App.Env)
	assert.Equal(t, 8080, conf.Server.Http)
	assert.Equal(t, 8, conf.Sync.Concurrency)
	assert.Equal(t, 5*time.Second, conf.Sync.RecordTimeout)
	assert.Equal(t, 500, conf.Sync.PageSize)
	assert.Equal(t, "Asia/Shanghai", conf.Reconcile.Timezone)
	assert.Equal(t, 10*time.Second, conf.Gateway.Timeout)
	assert.Nil(t, conf.WechatPayConfig)
}

func TestParse_Values(t *testing.T) {
	content := `
server:
  http: 9090
sync:
  concurrency: 3
  record_timeout: 1500ms
reconcile:
  timezone: UTC
  cache_ttl: 30s
mysql:
  host: db
  port: 3306
  username: u
  password: p
  database: recon
`
	conf, err := Parse([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, 9090, conf.Server.Http)
	assert.Equal(t, 3, conf.Sync.Concurrency)
	assert.Equal(t, 1500*time.Millisecond, conf.Sync.RecordTimeout)
	assert.Equal(t, "UTC", conf.Reconcile.Timezone)
	assert.Equal(t, 30*time.Second, conf.Reconcile.CacheTTL)
	assert.Equal(t, "u:p@tcp(db:3306)/recon?charset=utf8mb4&parseTime=True&loc=UTC", conf.MySQL.Dsn())
}

func TestParse_EnvOverride(t *testing.T) {
	t.Setenv("RECON_HTTP_PORT", "7070")
	t.Setenv("RECON_JWT_SECRET", "from-env")
	t.Setenv("RECON_MYSQL_PASSWORD", "secret")

	conf, err := Parse([]byte("mysql:\n  password: yaml\njwt:\n  secret: yaml\n"))
	require.NoError(t, err)

	assert.Equal(t, 7070, conf.Server.Http)
	assert.Equal(t, "from-env", conf.Jwt.Secret)
	assert.Equal(t, "secret", conf.MySQL.Password)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("server: [1, 2"))
	require.Error(t, err)
}

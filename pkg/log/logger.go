package log

import (
	"Reconcile/config"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var L *zap.Logger

func init() {
	L = zap.New(zapcore.NewCore(newEncoder(), zapcore.AddSync(os.Stdout), zap.InfoLevel),
		zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func newEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		projectName := "Reconcile"

		index := strings.Index(caller.File, projectName)
		if index != -1 {
			enc.AppendString(caller.File[index:] + ":" + strconv.Itoa(caller.Line))
		} else {
			enc.AppendString(caller.TrimmedPath())
		}
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

// Setup 按配置重建全局 logger，配置了文件时同时写入滚动日志
func Setup(conf *config.Log) {
	if conf == nil {
		return
	}
	level := zap.InfoLevel
	if conf.Level != "" {
		if l, err := zapcore.ParseLevel(conf.Level); err == nil {
			level = l
		}
	}

	sink := zapcore.AddSync(os.Stdout)
	if conf.File != "" {
		sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(&lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSizeMB,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAgeDays,
			Compress:   true,
		}))
	}

	L = zap.New(zapcore.NewCore(newEncoder(), sink, level), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

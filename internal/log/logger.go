package log

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const service = "stackqa"

var (
	L *zap.Logger

	level = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if lvl, err := zapcore.ParseLevel(v); err == nil {
			level.SetLevel(lvl)
		}
	}
	L = New(zapcore.AddSync(os.Stdout))
}

// New builds the JSON logger every line of the service goes through.
// Callers are printed relative to the module root.
func New(out zapcore.WriteSyncer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		if index := strings.Index(caller.File, service+"/"); index != -1 {
			enc.AppendString(caller.File[index:] + ":" + strconv.Itoa(caller.Line))
		} else {
			enc.AppendString(caller.TrimmedPath())
		}
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), out, level)
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(zap.String("service", service)),
	)
}

// SetDebug 调试模式下输出 debug 日志
func SetDebug(debug bool) {
	if debug {
		level.SetLevel(zap.DebugLevel)
		return
	}
	if level.Level() == zap.DebugLevel {
		level.SetLevel(zap.InfoLevel)
	}
}

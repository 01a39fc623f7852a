package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init 初始化全局 logrus：输出到 stdout，format 为 json 时使用 JSON 格式便于采集
func Init(level, format string) {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(ParseLevel(level))
}

// ParseLevel 无法识别的级别按 info 处理
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// For 返回带 component 字段的日志入口
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

// Package logging configures the process-wide go-playground/log handlers
package logging

import (
	"io"
	"sync"

	"github.com/go-playground/log"
	"github.com/go-playground/log/handlers/console"
)

// DefaultTimeFormat 日志时间格式
const DefaultTimeFormat = "2006-01-02 15:04:05"

var (
	once sync.Once
	cLog *console.Console
)

// Init 注册控制台日志处理器，可重复调用，只生效一次
// color 为 false 时输出纯文本（生产环境日志采集）
func Init(color bool) {
	once.Do(func() {
		cLog = console.New(false)
		cLog.SetTimestampFormat(DefaultTimeFormat)
		cLog.SetDisplayColor(color)
		log.AddHandler(cLog, log.AllLevels...)
	})
}

// SetWriter 重定向控制台日志输出（测试中用于屏蔽日志）
func SetWriter(w io.Writer) {
	Init(false)
	cLog.SetWriter(w)
}

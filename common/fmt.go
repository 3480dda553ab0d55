package common

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Printf 带调用位置与时间戳的操作轨迹输出，结算/投注链路排障用
func Printf(format string, v ...interface{}) {
	fmt.Println(time.Now().Format("2006-01-02 15:04:05.000"), "|", caller(), "|", fmt.Sprintf(format, v...))
}

func Println(v ...interface{}) {
	fmt.Println(time.Now().Format("2006-01-02 15:04:05.000"), "|", caller(), "|", fmt.Sprint(v...))
}

// caller 返回上上层调用点的 包目录/文件:行号 短路径
func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "?"
	}
	if i := strings.LastIndex(file, "/"); i > 0 {
		if j := strings.LastIndex(file[:i], "/"); j >= 0 {
			file = file[j+1:]
		}
	}
	return fmt.Sprintf("%s:%d", file, line)
}

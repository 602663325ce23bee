package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// GetConfInt 从配置文件中读取整数，支持 "1 << 20" 这样的写法，未配置时返回 def
func GetConfInt(config *viper.Viper, configStr string, def int) (int, error) {
	raw := strings.TrimSpace(config.GetString(configStr))
	if raw == "" {
		return def, nil
	}
	atoi, err := strconv.Atoi(raw)
	if err != nil {
		// 不是整数，则考虑是否为位移表达式
		atoi, err = parseBitwiseExpression(raw)
		if err != nil {
			return def, fmt.Errorf("reading %s: %w", configStr, err)
		}
	}
	return atoi, nil
}

// parseBitwiseExpression 解析位移表达式
func parseBitwiseExpression(expression string) (int, error) {
	compact := strings.ReplaceAll(expression, " ", "")
	// 检查字符串是否以 "1<<" 开头
	if !strings.HasPrefix(compact, "1<<") {
		return 0, fmt.Errorf("invalid bitwise expression %q", expression)
	}

	// 解析左移的位数
	shiftCount, err := strconv.Atoi(compact[3:])
	if err != nil {
		return 0, err
	}
	if shiftCount < 0 || shiftCount > 40 {
		return 0, fmt.Errorf("shift out of range in %q", expression)
	}

	return 1 << shiftCount, nil
}

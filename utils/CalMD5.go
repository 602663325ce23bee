package utils

import (
	"crypto/md5"
	"encoding/hex"
	"io"
)

// CalMD5 计算 r 中全部内容的 MD5 值
func CalMD5(r io.Reader) (string, error) {
	hash := md5.New()

	if _, err := io.Copy(hash, r); err != nil {
		return "", err
	}
	// 将字节数组转换为十六进制字符串
	return hex.EncodeToString(hash.Sum(nil)), nil
}

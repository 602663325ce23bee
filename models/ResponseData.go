package models

import "encoding/json"

// 响应码
const (
	CodeOK                 = 0
	CodeMalformed          = 1001
	CodeIncomplete         = 1002
	CodeNothingToFinalize  = 1003
	CodeFinalizeInProgress = 1004
	CodeWriteFailure       = 1005
)

// ResponseData 所有 HTTP 接口统一的响应体
type ResponseData struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MissingChunk IncompleteUpload 时 Data 的内容
type MissingChunk struct {
	Missing int `json:"missing"`
}

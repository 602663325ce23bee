package models

import "time"

type FinalizeResult struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	// 合并的分片数
	Chunks int   `json:"chunks"`
	Size   int64 `json:"size"`
	// 最终文件的 MD5
	MD5        string    `json:"md5"`
	FinishedAt time.Time `json:"finished_at"`
}

// FinalizeOutcome 合并结束后发送给通知方的消息
type FinalizeOutcome struct {
	Success bool            `json:"success"`
	Result  *FinalizeResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	// 缺失的分片，仅在 IncompleteUpload 时有效
	Missing *int `json:"missing,omitempty"`
}

package models

// SessionState 会话累积状态
type SessionState string

const (
	StateEmpty        SessionState = "empty"
	StateAccumulating SessionState = "accumulating"
	StateFinalizing   SessionState = "finalizing"
)

type TransferInfo struct {
	State SessionState `json:"state"`
	// 期望的分片数，即目前收到的最大 index + 1
	Expected int `json:"expected"`
	// 已接收分片数
	Received int `json:"received"`
	// 未接收分片列表
	Unreceived []int `json:"unreceived"`
}

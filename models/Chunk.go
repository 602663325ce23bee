package models

// Chunk 录制片段，Index 从 0 开始递增，决定在最终文件中的位置
type Chunk struct {
	Index   int
	Payload []byte
}

// ChunkAck 上传分片成功后的确认信息
type ChunkAck struct {
	Index int `json:"index"`
}

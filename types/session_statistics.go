package types

type SessionStatistics struct {
	FramesPushed   uint64 `json:",omitempty"`
	RowsWritten    uint64 `json:",omitempty"`
	BytesWritten   uint64 `json:",omitempty"`
	BufferCapacity uint64 `json:",omitempty"`
}

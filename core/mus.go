package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// ProcessedRecordMUS serializes ProcessedRecord values in the MUS binary
// format for durable storage. Timestamps are stored as Unix microseconds.
var ProcessedRecordMUS = processedRecordMUS{}

type processedRecordMUS struct{}

func (processedRecordMUS) Marshal(v ProcessedRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.SourceID, bs)
	n += varint.Int64.Marshal(v.ProcessedAt.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	return n
}

func (processedRecordMUS) Unmarshal(bs []byte) (v ProcessedRecord, n int, err error) {
	var n1 int
	v.SourceID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ProcessedAt = time.UnixMicro(micros).UTC()
	var status int
	status, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status = ProcessedStatus(status)
	return
}

func (processedRecordMUS) Size(v ProcessedRecord) (size int) {
	size = ord.String.Size(v.SourceID)
	size += varint.Int64.Size(v.ProcessedAt.UnixMicro())
	size += varint.Int.Size(int(v.Status))
	return size
}

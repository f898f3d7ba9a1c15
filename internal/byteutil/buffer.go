package byteutil

import (
	"bytes"
	"encoding/json"
	"sync"
)

var bytesBuffer = sync.Pool{
	New: func() interface{} { return &bytes.Buffer{} },
}

func GetBytesBuf() *bytes.Buffer {
	return bytesBuffer.Get().(*bytes.Buffer)
}

func PutBytesBuf(p *bytes.Buffer) {
	p.Reset()
	bytesBuffer.Put(p)
}

// MarshalJSON encodes v through a pooled buffer. The returned slice is a
// copy and stays valid after the buffer goes back to the pool.
func MarshalJSON(v interface{}) ([]byte, error) {
	buf := GetBytesBuf()
	defer PutBytesBuf(buf)
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	// Encode appends a newline
	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return append([]byte(nil), out...), nil
}

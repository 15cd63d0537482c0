package hostfuncs

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tetratelabs/wazero/api"
)

// maxStringLen bounds NUL-terminated string reads.
const maxStringLen = 64 * 1024

// readCString reads a NUL-terminated string starting at ptr.
func readCString(mem api.Memory, ptr uint32) (string, error) {
	if mem == nil {
		return "", fmt.Errorf("module has no memory")
	}
	size := mem.Size()
	if ptr >= size {
		return "", fmt.Errorf("string pointer %d out of bounds (memory size %d)", ptr, size)
	}

	n := size - ptr
	if n > maxStringLen {
		n = maxStringLen
	}
	buf, ok := mem.Read(ptr, n)
	if !ok {
		return "", fmt.Errorf("failed to read string at %d", ptr)
	}
	for i, c := range buf {
		if c == 0 {
			return string(buf[:i]), nil
		}
	}
	return "", fmt.Errorf("string at %d is not NUL-terminated", ptr)
}

// readFloats reads count little-endian f32 values starting at ptr.
func readFloats(mem api.Memory, ptr uint32, count int32) ([]float32, error) {
	if mem == nil {
		return nil, fmt.Errorf("module has no memory")
	}
	if count < 0 {
		return nil, fmt.Errorf("negative float count %d", count)
	}

	size := uint64(mem.Size())
	if uint64(ptr)+4*uint64(count) > size {
		return nil, fmt.Errorf("%d floats at %d out of bounds (memory size %d)", count, ptr, size)
	}

	//nolint:gosec // G115: 4*count is bounded by the memory size checked above
	buf, ok := mem.Read(ptr, uint32(count)*4)
	if !ok {
		return nil, fmt.Errorf("failed to read %d floats at %d", count, ptr)
	}
	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}

// Package hasher computes the xxHash64 digests used for content-addressed
// output names and for byte-identity checks between buffers.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// ContentHash returns the xxHash64 of data as hex, truncated to hexLen
// characters when 0 < hexLen < 16.
func ContentHash(data []byte, hexLen int) string {
	return format(xxhash.Sum64(data), hexLen)
}

// ContentHashReader is ContentHash over a stream.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(h.Sum64(), hexLen), nil
}

// BufferHash digests the shape and pixels of b, so buffers with equal
// bytes but different dimensions hash differently.
func BufferHash(b *raster.Buffer) string {
	h := xxhash.New()
	var hdr [24]byte
	binary.BigEndian.PutUint64(hdr[0:], uint64(b.Width))
	binary.BigEndian.PutUint64(hdr[8:], uint64(b.Height))
	binary.BigEndian.PutUint64(hdr[16:], uint64(b.Channels))
	h.Write(hdr[:])
	h.Write(b.Data)
	return format(h.Sum64(), 0)
}

func format(sum uint64, hexLen int) string {
	full := hex.EncodeToString(binary.BigEndian.AppendUint64(nil, sum))
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}

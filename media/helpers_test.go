package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeTags struct {
	fields map[string]string
	lines  []string
}

func (f fakeTags) Field(name string) (string, bool) {
	v, ok := f.fields[name]
	return v, ok
}

func (f fakeTags) Lines() []string { return f.lines }

type fakeDocuments struct {
	tags  Tags
	err   error
	calls int
}

func (f *fakeDocuments) Open(ctx context.Context, path string) (Tags, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

type fakeStreams struct {
	info  StreamInfo
	err   error
	paths []string
}

func (f *fakeStreams) Inspect(path string) (StreamInfo, error) {
	f.paths = append(f.paths, path)
	return f.info, f.err
}

type fakeTranscoder struct {
	out   string
	err   error
	calls int
}

func (f *fakeTranscoder) Transcode(ctx context.Context, src string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }

type rational struct {
	num, den uint32
}

// buildTIFF assembles a little-endian TIFF with an EXIF sub-IFD holding
// DateTimeOriginal and a GPS sub-IFD holding the given coordinates. Empty
// values are left out.
func buildTIFF(date string, lat, lon []rational) []byte {
	type entry struct {
		tag   uint16
		typ   uint16
		count uint32
		data  []byte
	}
	rats := func(rs []rational) []byte {
		b := make([]byte, 8*len(rs))
		for i, r := range rs {
			binary.LittleEndian.PutUint32(b[8*i:], r.num)
			binary.LittleEndian.PutUint32(b[8*i+4:], r.den)
		}
		return b
	}
	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b
	}

	var exifIFD, gpsIFD []entry
	if date != "" {
		exifIFD = append(exifIFD, entry{0x9003, 2, uint32(len(date) + 1), append([]byte(date), 0)})
	}
	if len(lat) > 0 {
		gpsIFD = append(gpsIFD, entry{0x0002, 5, uint32(len(lat)), rats(lat)})
	}
	if len(lon) > 0 {
		gpsIFD = append(gpsIFD, entry{0x0004, 5, uint32(len(lon)), rats(lon)})
	}

	ifdSize := func(n int) uint32 { return uint32(2 + 12*n + 4) }
	n0 := 0
	if len(exifIFD) > 0 {
		n0++
	}
	if len(gpsIFD) > 0 {
		n0++
	}
	exifOff := 8 + ifdSize(n0)
	gpsOff := exifOff
	if len(exifIFD) > 0 {
		gpsOff += ifdSize(len(exifIFD))
	}
	dataOff := gpsOff
	if len(gpsIFD) > 0 {
		dataOff += ifdSize(len(gpsIFD))
	}

	var ifd0 []entry
	if len(exifIFD) > 0 {
		ifd0 = append(ifd0, entry{0x8769, 4, 1, u32(exifOff)})
	}
	if len(gpsIFD) > 0 {
		ifd0 = append(ifd0, entry{0x8825, 4, 1, u32(gpsOff)})
	}

	var head, data bytes.Buffer
	head.WriteString("II")
	binary.Write(&head, binary.LittleEndian, uint16(42))
	binary.Write(&head, binary.LittleEndian, uint32(8))

	writeIFD := func(entries []entry) {
		binary.Write(&head, binary.LittleEndian, uint16(len(entries)))
		for _, e := range entries {
			binary.Write(&head, binary.LittleEndian, e.tag)
			binary.Write(&head, binary.LittleEndian, e.typ)
			binary.Write(&head, binary.LittleEndian, e.count)
			if len(e.data) <= 4 {
				var v [4]byte
				copy(v[:], e.data)
				head.Write(v[:])
				continue
			}
			binary.Write(&head, binary.LittleEndian, dataOff+uint32(data.Len()))
			data.Write(e.data)
		}
		binary.Write(&head, binary.LittleEndian, uint32(0))
	}
	writeIFD(ifd0)
	if len(exifIFD) > 0 {
		writeIFD(exifIFD)
	}
	if len(gpsIFD) > 0 {
		writeIFD(gpsIFD)
	}
	return append(head.Bytes(), data.Bytes()...)
}

var (
	sfLatitude  = []rational{{37, 1}, {46, 1}, {2999, 100}}
	sfLongitude = []rational{{122, 1}, {25, 1}, {984, 100}}
)

func mp4Box(typ string, payload ...[]byte) []byte {
	size := 8
	for _, p := range payload {
		size += len(p)
	}
	b := make([]byte, 8, size)
	binary.BigEndian.PutUint32(b, uint32(size))
	copy(b[4:], typ)
	for _, p := range payload {
		b = append(b, p...)
	}
	return b
}

func mvhdBox(timescale, duration uint32) []byte {
	p := make([]byte, 100)
	binary.BigEndian.PutUint32(p[12:], timescale)
	binary.BigEndian.PutUint32(p[16:], duration)
	binary.BigEndian.PutUint32(p[20:], 0x00010000)
	binary.BigEndian.PutUint16(p[24:], 0x0100)
	binary.BigEndian.PutUint32(p[96:], 3)
	return mp4Box("mvhd", p)
}

func tkhdBox(trackID uint32, width, height uint16) []byte {
	p := make([]byte, 84)
	p[3] = 0x03
	binary.BigEndian.PutUint32(p[12:], trackID)
	binary.BigEndian.PutUint32(p[76:], uint32(width)<<16)
	binary.BigEndian.PutUint32(p[80:], uint32(height)<<16)
	return mp4Box("tkhd", p)
}

// buildMP4 returns a container with an audio track followed by a video track.
func buildMP4(timescale, duration uint32, width, height uint16) []byte {
	ftyp := mp4Box("ftyp", []byte("isom\x00\x00\x02\x00isomiso2"))
	moov := mp4Box("moov",
		mvhdBox(timescale, duration),
		mp4Box("trak", tkhdBox(1, 0, 0)),
		mp4Box("trak", tkhdBox(2, width, height)),
	)
	return append(ftyp, moov...)
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

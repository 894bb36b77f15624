package archive

import (
	"bytes"
	"encoding/binary"
	"io"
)

// magic identifies an rzip archive container. It is the first 8 bytes of
// every archive this package writes.
var magic = [8]byte{0x52, 0x5a, 0x88, 0x12, 0x78, 0xf1, 0x07, 0x13}

// header is the 24-byte fixed preamble of an archive: magic, a files
// count, and an encrypted flag.
//
// Both the files count and the encrypted flag are written as full 8-byte
// little-endian words but read back as 4-byte little-endian words — a
// mismatch inherited from the format this container reproduces. It is
// harmless for archive sizes and flag values that fit in 32 bits, which
// every archive rzip itself produces does, but it means a header is not
// symmetric: WriteTo emits 8 bytes per field, ReadFrom consumes 8 bytes
// per field and discards the upper 4.
type header struct {
	filesCount uint64
	encrypted  bool
}

// WriteTo writes the header in its on-disk form.
func (h *header) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)
	buf.Write(magic[:])

	if err := binary.Write(buf, binary.LittleEndian, h.filesCount); err != nil {
		return 0, err
	}

	var encryptedWord uint64
	if h.encrypted {
		encryptedWord = 1
	}
	if err := binary.Write(buf, binary.LittleEndian, encryptedWord); err != nil {
		return 0, err
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ReadFrom reads a header back, returning ErrDifferentMagicValue if the
// leading 8 bytes don't match magic.
func (h *header) ReadFrom(r io.Reader) (int64, error) {
	var total int64

	var gotMagic [8]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return total, err
	}
	total += 8
	if gotMagic != magic {
		return total, ErrDifferentMagicValue
	}

	var buf8 [8]byte
	if _, err := io.ReadFull(r, buf8[:]); err != nil {
		return total, err
	}
	total += 8
	h.filesCount = uint64(binary.LittleEndian.Uint32(buf8[:4]))

	if _, err := io.ReadFull(r, buf8[:]); err != nil {
		return total, err
	}
	total += 8
	h.encrypted = binary.LittleEndian.Uint32(buf8[:4]) != 0

	return total, nil
}

// record is a single archived file as it sits inside the container: a
// fixed block of uint64 fields, the name padded to a 4-byte multiple,
// then the body.
type record struct {
	mode       uint64
	size       uint64
	bodySize   uint64
	compressed bool
	name       string
	body       []byte
}

func recordFromFile(f *File) *record {
	return &record{
		mode:       f.Mode(),
		size:       f.Size(),
		bodySize:   f.BodySize(),
		compressed: f.IsCompressed(),
		name:       f.RelPath,
		body:       f.Body(),
	}
}

// WriteTo writes the record in its on-disk form.
func (rec *record) WriteTo(w io.Writer) (int64, error) {
	name := []byte(rec.name)
	for len(name)%4 != 0 {
		name = append(name, 0)
	}

	buf := new(bytes.Buffer)
	for _, v := range []uint64{rec.mode, rec.size, rec.bodySize, boolWord(rec.compressed), uint64(len(name))} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return 0, err
		}
	}
	buf.Write(name)
	buf.Write(rec.body)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ReadFrom reads a record back out of r.
func (rec *record) ReadFrom(r io.Reader) (int64, error) {
	var total int64

	fields := make([]uint64, 5)
	for i := range fields {
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return total, err
		}
		total += 8
		fields[i] = v
	}
	rec.mode, rec.size, rec.bodySize = fields[0], fields[1], fields[2]
	rec.compressed = fields[3] != 0
	nameLength := fields[4]

	nameBuf := make([]byte, nameLength)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return total, err
	}
	total += int64(nameLength)
	rec.name = string(bytes.TrimRight(nameBuf, "\x00"))

	rec.body = make([]byte, rec.bodySize)
	if _, err := io.ReadFull(r, rec.body); err != nil {
		return total, err
	}
	total += int64(rec.bodySize)

	return total, nil
}

func boolWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

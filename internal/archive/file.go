package archive

import (
	"bytes"
	"os"
	"path/filepath"
)

// Compressor is the contract rzip's archive pipeline needs from a byte
// compressor; internal/lzw.Codec satisfies it.
type Compressor interface {
	Compress(src []byte) []byte
	Decompress(src []byte) ([]byte, error)
}

// CipherProcessor is the contract the archive pipeline needs from a
// whole-buffer block cipher mode; internal/cbc.Processor satisfies it.
type CipherProcessor interface {
	EncryptBlocks(src []byte) ([]byte, error)
	DecryptBlocks(src []byte) ([]byte, error)
}

// File is a single archived member moving through the
// raw -> compressed? -> encrypted? state lattice. The zero value is not
// valid; build one with FromDisk or NewFile.
type File struct {
	RelPath    string
	compressed bool
	encrypted  bool
	mode       uint64
	size       uint64
	body       []byte
}

// FromDisk reads path off disk and returns an uncompressed, unencrypted
// File whose RelPath is path made relative to baseDir.
func FromDisk(path, baseDir string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, ErrFileNotExist
	}

	relPath, err := filepath.Rel(baseDir, path)
	if err != nil {
		return nil, ErrIncorrectFilePath
	}

	info, err := os.Lstat(path)
	if err != nil {
		return nil, newIOError("stat", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrIncorrectFileType
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, newIOError("read", path, err)
	}

	return &File{
		RelPath: relPath,
		mode:    uint64(info.Mode().Perm()),
		size:    uint64(info.Size()),
		body:    body,
	}, nil
}

// NewFile builds a File from already-known fields, as the extractor does
// when it reads a record back out of an archive.
func NewFile(relPath string, compressed, encrypted bool, mode, size uint64, body []byte) *File {
	return &File{
		RelPath:    relPath,
		compressed: compressed,
		encrypted:  encrypted,
		mode:       mode,
		size:       size,
		body:       body,
	}
}

// Compress replaces the body with its compressed form. It is an error to
// compress an already-compressed or an encrypted File.
//
// When the compressor falls back to returning the input verbatim, the
// body is not an LZW stream and the compressed flag stays unset;
// extraction then skips the decoder and restores the bytes as-is.
func (f *File) Compress(c Compressor) error {
	if f.encrypted {
		return ErrCompressingEncryptedData
	}
	if f.compressed {
		return ErrFileAlreadyCompressed
	}
	body := c.Compress(f.body)
	if bytes.Equal(body, f.body) {
		return nil
	}
	f.body = body
	f.compressed = true
	return nil
}

// Decompress replaces the body with its decompressed form. It is an
// error to decompress a File that isn't compressed or that is still
// encrypted.
func (f *File) Decompress(c Compressor) error {
	if f.encrypted {
		return ErrDecompressingEncryptedData
	}
	if !f.compressed {
		return ErrFileAlreadyDecompressed
	}
	body, err := c.Decompress(f.body)
	if err != nil {
		return err
	}
	f.body = body
	f.compressed = false
	return nil
}

// Encrypt replaces the body with its encrypted form. It is an error to
// encrypt an already-encrypted File.
func (f *File) Encrypt(p CipherProcessor) error {
	if f.encrypted {
		return ErrFileAlreadyEncrypted
	}
	body, err := p.EncryptBlocks(f.body)
	if err != nil {
		return err
	}
	f.body = body
	f.encrypted = true
	return nil
}

// Decrypt replaces the body with its decrypted form. It is an error to
// decrypt a File that isn't encrypted.
func (f *File) Decrypt(p CipherProcessor) error {
	if !f.encrypted {
		return ErrFileAlreadyDecrypted
	}
	body, err := p.DecryptBlocks(f.body)
	if err != nil {
		return err
	}
	f.body = body
	f.encrypted = false
	return nil
}

// IsCompressed reports whether the body currently holds compressed bytes.
func (f *File) IsCompressed() bool { return f.compressed }

// IsEncrypted reports whether the body currently holds encrypted bytes.
func (f *File) IsEncrypted() bool { return f.encrypted }

// Mode returns the original file's permission bits.
func (f *File) Mode() uint64 { return f.mode }

// Size returns the original, uncompressed plaintext size.
func (f *File) Size() uint64 { return f.size }

// BodySize returns the length of the body as it currently sits — raw,
// compressed, and/or encrypted.
func (f *File) BodySize() uint64 { return uint64(len(f.body)) }

// Body returns the File's current body bytes.
func (f *File) Body() []byte { return f.body }

// Package archive implements rzip's container format and the parallel
// build/extract pipeline around it: a fixed header, a stream of
// self-describing file records, and a worker pool that compresses and
// encrypts (or decrypts and decompresses) each file's body concurrently
// while a single goroutine owns all file I/O against the archive and
// the output tree.
package archive

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/feereel/rzip/internal/cbc"
	"github.com/feereel/rzip/internal/threefish"
	"github.com/feereel/rzip/internal/walk"
)

// ivSize is the width of the per-archive IV block rzip stores
// immediately after the fixed header when encryption is enabled. It
// equals threefish.BlockSize, the CBC block size this archive format is
// built against.
const ivSize = threefish.BlockSize

// CipherParams names the key material an Archiver uses to build the
// per-archive Threefish/CBC processor. The IV is not part of this: it
// is generated fresh for every archive built, and stored in the archive
// itself so extraction never needs it supplied out of band.
type CipherParams struct {
	Key   []byte
	Tweak []byte
}

// Archiver drives a build (Zip) or extract (Unzip) pass over a source
// path using up to nWorkers concurrent file jobs. compressor and cipher
// are both optional; a nil compressor leaves the compress stage a
// no-op, and a nil cipher leaves the archive unencrypted.
type Archiver struct {
	sourcePath string
	nWorkers   int
	compressor Compressor
	cipher     *CipherParams
}

// New builds an Archiver rooted at sourcePath — a directory to Zip, or
// an archive file to Unzip.
func New(sourcePath string, nWorkers int, compressor Compressor, cipher *CipherParams) (*Archiver, error) {
	if nWorkers < 1 {
		return nil, ErrInvalidWorkerCount
	}
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, newIOError("resolve", sourcePath, err)
	}
	return &Archiver{
		sourcePath: abs,
		nWorkers:   nWorkers,
		compressor: compressor,
		cipher:     cipher,
	}, nil
}

func (a *Archiver) newProcessor(iv []byte) (*cbc.Processor, error) {
	block, err := threefish.New(a.cipher.Key, a.cipher.Tweak)
	if err != nil {
		return nil, err
	}
	return cbc.New(block, iv)
}

// Zip walks the Archiver's source directory, builds an archive member
// for every regular file found, and writes the result to outputPath. A
// file whose job fails is reported on stderr and dropped; Zip returns
// the number of files successfully archived.
func (a *Archiver) Zip(outputPath string) (int, error) {
	paths, err := walk.AbsolutePaths(a.sourcePath)
	if err != nil {
		return 0, newIOError("walk", a.sourcePath, err)
	}

	fmt.Printf("Total files: %d\n", len(paths))

	var processor *cbc.Processor
	var iv []byte
	if a.cipher != nil {
		iv = make([]byte, ivSize)
		if _, err := rand.Read(iv); err != nil {
			return 0, newIOError("generate iv", outputPath, err)
		}
		processor, err = a.newProcessor(iv)
		if err != nil {
			return 0, err
		}
	}

	var g errgroup.Group
	g.SetLimit(a.nWorkers)

	var mu sync.Mutex
	var members []*File

	for _, p := range paths {
		p := p
		g.Go(func() error {
			f, err := a.buildArchiveMember(p, processor)
			if err != nil {
				fmt.Fprintf(os.Stderr, "rzip: skipping %s: %v\n", p, err)
				return nil
			}
			mu.Lock()
			members = append(members, f)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, newIOError("create", outputPath, err)
	}
	defer out.Close()

	h := &header{filesCount: uint64(len(members)), encrypted: a.cipher != nil}
	if _, err := h.WriteTo(out); err != nil {
		return 0, newIOError("write", outputPath, err)
	}
	if a.cipher != nil {
		if _, err := out.Write(iv); err != nil {
			return 0, newIOError("write", outputPath, err)
		}
	}

	for i, f := range members {
		rec := recordFromFile(f)
		if _, err := rec.WriteTo(out); err != nil {
			return i, newIOError("write", outputPath, err)
		}
		fmt.Printf("Files zipped: %d/%d, size: %d, path: %s\n", i+1, len(paths), f.Size(), f.RelPath)
	}

	return len(members), nil
}

// buildArchiveMember reads path off disk and runs it through the
// optional compress-then-encrypt pipeline stages.
func (a *Archiver) buildArchiveMember(path string, processor *cbc.Processor) (*File, error) {
	f, err := FromDisk(path, a.sourcePath)
	if err != nil {
		return nil, err
	}
	if a.compressor != nil {
		if err := f.Compress(a.compressor); err != nil {
			return nil, err
		}
	}
	if processor != nil {
		if err := f.Encrypt(processor); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Unzip reads the Archiver's source archive and extracts every member
// into outputDir, recreating its relative directory structure. A file
// whose job fails is reported on stderr and dropped; Unzip returns the
// number of files successfully extracted.
func (a *Archiver) Unzip(outputDir string) (int, error) {
	in, err := os.Open(a.sourcePath)
	if err != nil {
		return 0, newIOError("open", a.sourcePath, err)
	}
	defer in.Close()

	h := &header{}
	if _, err := h.ReadFrom(in); err != nil {
		return 0, err
	}

	var processor *cbc.Processor
	if h.encrypted {
		if a.cipher == nil {
			return 0, ErrCipherKeyRequired
		}
		iv := make([]byte, ivSize)
		if _, err := io.ReadFull(in, iv); err != nil {
			return 0, newIOError("read", a.sourcePath, err)
		}
		processor, err = a.newProcessor(iv)
		if err != nil {
			return 0, err
		}
	}

	var g errgroup.Group
	g.SetLimit(a.nWorkers)

	var mu sync.Mutex
	var members []*File

	for i := uint64(0); i < h.filesCount; i++ {
		rec := &record{}
		if _, err := rec.ReadFrom(in); err != nil {
			return 0, newIOError("read", a.sourcePath, err)
		}

		f := NewFile(rec.name, rec.compressed, h.encrypted, rec.mode, rec.size, rec.body)
		g.Go(func() error {
			if err := a.restoreArchiveMember(f, processor); err != nil {
				fmt.Fprintf(os.Stderr, "rzip: skipping %s: %v\n", f.RelPath, err)
				return nil
			}
			mu.Lock()
			members = append(members, f)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	for i, f := range members {
		if err := writeExtracted(outputDir, f); err != nil {
			return i, err
		}
		fmt.Printf("Files unzipped: %d/%d, size: %d, path: %s\n", i+1, h.filesCount, f.Size(), f.RelPath)
	}

	return len(members), nil
}

// restoreArchiveMember runs a loaded member through the optional
// decrypt-then-decompress pipeline stages, the reverse order of
// buildArchiveMember.
func (a *Archiver) restoreArchiveMember(f *File, processor *cbc.Processor) error {
	if processor != nil && f.IsEncrypted() {
		if err := f.Decrypt(processor); err != nil {
			return err
		}
	}
	if a.compressor != nil && f.IsCompressed() {
		if err := f.Decompress(a.compressor); err != nil {
			return err
		}
	}
	return nil
}

func writeExtracted(outputDir string, f *File) error {
	outputPath := filepath.Join(outputDir, f.RelPath)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return newIOError("mkdir", filepath.Dir(outputPath), err)
	}
	if err := os.WriteFile(outputPath, f.Body(), os.FileMode(f.Mode())); err != nil {
		return newIOError("write", outputPath, err)
	}
	return nil
}

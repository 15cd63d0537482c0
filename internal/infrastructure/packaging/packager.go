// Package packaging wraps compiled binaries into a self-contained HTML
// document and a zip archive.
package packaging

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/reglet-dev/scenepack/internal/application/dto"
)

// Artifact extensions.
const (
	DocumentExt = ".html"
	ArchiveExt  = ".zip"
)

//go:embed assets/bridge.js
var bridgeJS []byte

//go:embed assets/document.html.tmpl
var documentTemplate string

var documentTmpl = template.Must(template.New("document").Parse(documentTemplate))

var (
	bridgeLiteral = regexp.MustCompile(`\$0="([A-Za-z0-9+/=]*)"`)
	binaryLiteral = regexp.MustCompile(`\$1="([A-Za-z0-9+/=]*)"`)
)

// documentData fills the document template.
type documentData struct {
	Title  string
	Bridge string
	Binary string
}

// Bridge returns the browser host bridge shipped in every document.
func Bridge() []byte {
	return bytes.Clone(bridgeJS)
}

// Packager writes the document and archive for a binary.
type Packager struct {
	logger *slog.Logger
}

// NewPackager creates a new packager.
func NewPackager(logger *slog.Logger) *Packager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Packager{logger: logger}
}

// Package writes <outputDir>/<name>.html and <outputDir>/<name>.zip. Both are
// staged in temporary files and renamed into place together; if either rename
// fails the previous artifacts are restored.
func (p *Packager) Package(ctx context.Context, binary []byte, outputDir, name string) (*dto.PackageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	document, err := BuildDocument(name, binary)
	if err != nil {
		return nil, err
	}

	archive, err := BuildArchive(name+DocumentExt, document)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	docPath := filepath.Join(outputDir, name+DocumentExt)
	archivePath := filepath.Join(outputDir, name+ArchiveExt)
	if err := publish([]staged{{path: docPath, data: document}, {path: archivePath, data: archive}}); err != nil {
		return nil, err
	}

	p.logger.DebugContext(ctx, "packaged scene",
		"document", docPath,
		"document_bytes", len(document),
		"archive_bytes", len(archive),
		"binary_bytes", len(binary))

	return &dto.PackageResult{
		DocumentPath: docPath,
		ArchivePath:  archivePath,
		DocumentSize: int64(len(document)),
		ArchiveSize:  int64(len(archive)),
	}, nil
}

// BuildDocument renders the HTML document embedding the bridge and binary.
func BuildDocument(title string, binary []byte) ([]byte, error) {
	bridge, err := encodePayload(bridgeJS)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bridge: %w", err)
	}
	bin, err := encodePayload(binary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode binary: %w", err)
	}

	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, documentData{Title: title, Bridge: bridge, Binary: bin}); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildArchive zips document under entryName.
func BuildArchive(entryName string, document []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	w, err := zw.CreateHeader(&zip.FileHeader{Name: entryName, Method: zip.Deflate})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := w.Write(document); err != nil {
		return nil, fmt.Errorf("failed to write archive entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack decodes the bridge and binary payloads of a packaged document.
func (p *Packager) Unpack(document []byte) (*dto.UnpackedDocument, error) {
	bridge, err := extractPayload(bridgeLiteral, document, "$0")
	if err != nil {
		return nil, err
	}
	binary, err := extractPayload(binaryLiteral, document, "$1")
	if err != nil {
		return nil, err
	}
	return &dto.UnpackedDocument{Bridge: bridge, Binary: binary}, nil
}

func extractPayload(re *regexp.Regexp, document []byte, name string) ([]byte, error) {
	m := re.FindSubmatch(document)
	if m == nil {
		return nil, fmt.Errorf("document has no %s payload", name)
	}
	data, err := decodePayload(string(m[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", name, err)
	}
	return data, nil
}

// encodePayload gzips data at best compression and base64 encodes the result.
func encodePayload(data []byte) (string, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(data); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decodePayload(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = zr.Close()
	}()
	return io.ReadAll(zr)
}
// staged is an artifact waiting to be renamed into place.
type staged struct {
	path string
	data []byte
	tmp  string
	bak  string
}

// publish writes every artifact to a temporary file, then moves all of them
// into place. Existing files are set aside first and put back when any step
// fails, so the output directory holds either all new or all old artifacts.
func publish(files []staged) (err error) {
	defer func() {
		for _, f := range files {
			if f.tmp != "" {
				_ = os.Remove(f.tmp)
			}
		}
	}()

	for i := range files {
		tmp, werr := writeTemp(files[i].path, files[i].data)
		if werr != nil {
			return werr
		}
		files[i].tmp = tmp
	}

	var placed []staged
	defer func() {
		if err == nil {
			for _, f := range placed {
				if f.bak != "" {
					_ = os.Remove(f.bak)
				}
			}
			return
		}
		for i := len(placed) - 1; i >= 0; i-- {
			f := placed[i]
			if f.bak != "" {
				_ = os.Rename(f.bak, f.path)
			} else {
				_ = os.Remove(f.path)
			}
		}
	}()

	for i := range files {
		f := &files[i]
		if info, serr := os.Lstat(f.path); serr == nil && !info.IsDir() {
			f.bak = f.tmp + ".bak"
			if rerr := os.Rename(f.path, f.bak); rerr != nil {
				return fmt.Errorf("failed to set aside %s: %w", f.path, rerr)
			}
		}
		if rerr := os.Rename(f.tmp, f.path); rerr != nil {
			if f.bak != "" {
				_ = os.Rename(f.bak, f.path)
			}
			return fmt.Errorf("failed to replace %s: %w", f.path, rerr)
		}
		f.tmp = ""
		placed = append(placed, *f)
	}
	return nil
}

// writeTemp writes data to a temporary file beside path and returns its name.
func writeTemp(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return tmpName, nil
}

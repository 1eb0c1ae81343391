package file

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

const (
	containerPath     = "META-INF/container.xml"
	packageMediaType  = "application/oebps-package+xml"
	xhtmlMediaType    = "application/xhtml+xml"
	defaultEntryLimit = 64 << 20
)

var (
	ErrNoContainer      = errors.New("epub: missing META-INF/container.xml")
	ErrInvalidContainer = errors.New("epub: invalid container.xml")
	ErrNoRootfile       = errors.New("epub: no rootfile found in container.xml")
	ErrNoOPF            = errors.New("epub: missing package document")
	ErrInvalidOPF       = errors.New("epub: invalid package document")
	ErrEmptySpine       = errors.New("epub: no content in spine")
	ErrMissingEntry     = errors.New("epub: entry not found in archive")
	ErrEntryTooLarge    = errors.New("epub: entry exceeds size limit")
)

type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Manifest struct {
		Items []opfItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

// spineDocument is a content document in reading order.
type spineDocument struct {
	Name      string
	MediaType string
}

type archive struct {
	files     map[string]*zip.File
	sizeLimit int64
}

func newArchive(zr *zip.Reader, sizeLimit int64) *archive {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	return &archive{files: files, sizeLimit: sizeLimit}
}

func (a *archive) read(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrMissingEntry)
	}
	return readEntry(f, a.sizeLimit)
}

// readEntry reads a zip entry, refusing to inflate more than limit bytes.
func readEntry(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%q (%d bytes): %w", f.Name, f.UncompressedSize64, ErrEntryTooLarge)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%q: %w", f.Name, ErrEntryTooLarge)
	}
	return data, nil
}

// packagePath returns the location of the package document named by the
// container, preferring a rootfile with the OPF media type.
func (a *archive) packagePath() (string, error) {
	if _, ok := a.files[containerPath]; !ok {
		return "", ErrNoContainer
	}
	data, err := a.read(containerPath)
	if err != nil {
		return "", err
	}

	var container containerXML
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}

	var first string
	for _, rf := range container.Rootfiles.Rootfile {
		if rf.FullPath == "" {
			continue
		}
		if rf.MediaType == packageMediaType || rf.MediaType == "" {
			return rf.FullPath, nil
		}
		if first == "" {
			first = rf.FullPath
		}
	}
	if first == "" {
		return "", ErrNoRootfile
	}
	return first, nil
}

// spine resolves the package document's spine into archive entry names.
// Every itemref must name a manifest item.
func (a *archive) spine(opfPath string) ([]spineDocument, error) {
	if _, ok := a.files[opfPath]; !ok {
		return nil, fmt.Errorf("%q: %w", opfPath, ErrNoOPF)
	}
	data, err := a.read(opfPath)
	if err != nil {
		return nil, err
	}

	var opf opfPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOPF, err)
	}
	if len(opf.Spine.ItemRefs) == 0 {
		return nil, ErrEmptySpine
	}

	manifest := make(map[string]opfItem, len(opf.Manifest.Items))
	for _, item := range opf.Manifest.Items {
		manifest[item.ID] = item
	}

	baseDir := path.Dir(opfPath)
	docs := make([]spineDocument, 0, len(opf.Spine.ItemRefs))
	for _, ref := range opf.Spine.ItemRefs {
		item, ok := manifest[ref.IDRef]
		if !ok {
			return nil, fmt.Errorf("%w: spine references unknown item %q", ErrInvalidOPF, ref.IDRef)
		}
		docs = append(docs, spineDocument{
			Name:      resolveHref(baseDir, item.Href),
			MediaType: strings.ToLower(strings.TrimSpace(item.MediaType)),
		})
	}
	return docs, nil
}

// resolveHref turns a manifest href, relative to the package document, into
// an archive entry name.
func resolveHref(baseDir, href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	return strings.TrimPrefix(path.Join(baseDir, href), "/")
}

// Package archive packs and unpacks the .apkg container: a ZIP holding
// the collection database under a fixed entry name, a JSON media manifest
// mapping numeric indices to media file names, and one entry per media
// blob keyed by its manifest index.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
)

// MediaManifestName is the fixed entry name of the media manifest.
const MediaManifestName = "media"

// ErrNoDatabase reports an archive without a collection database entry.
var ErrNoDatabase = fmt.Errorf("archive does not contain a %s database entry", anki.DatabaseEntryName)

// Package is the unpacked content of a .apkg.
type Package struct {
	Database []byte
	Media    map[string][]byte
}

// Pack builds .apkg bytes from database bytes and a name-to-bytes media
// map. Media entries are numbered deterministically by sorted name so the
// same input produces the same manifest.
func Pack(database []byte, media map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	entry, err := w.Create(anki.DatabaseEntryName)
	if err != nil {
		return nil, fmt.Errorf("zip.Create(%s) > %w", anki.DatabaseEntryName, err)
	}
	if _, err := entry.Write(database); err != nil {
		return nil, fmt.Errorf("write database entry > %w", err)
	}

	names := make([]string, 0, len(media))
	for name := range media {
		names = append(names, name)
	}
	sort.Strings(names)

	manifest := make(map[string]string, len(names))
	for i, name := range names {
		index := strconv.Itoa(i)
		manifest[index] = name

		blob, err := w.Create(index)
		if err != nil {
			return nil, fmt.Errorf("zip.Create(%s) > %w", index, err)
		}
		if _, err := blob.Write(media[name]); err != nil {
			return nil, fmt.Errorf("write media entry %s > %w", name, err)
		}
	}

	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshal media manifest > %w", err)
	}
	manifestEntry, err := w.Create(MediaManifestName)
	if err != nil {
		return nil, fmt.Errorf("zip.Create(%s) > %w", MediaManifestName, err)
	}
	if _, err := manifestEntry.Write(manifestJSON); err != nil {
		return nil, fmt.Errorf("write media manifest > %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zip.Close() > %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack reads a .apkg. A missing database entry is a hard failure; a
// malformed media manifest degrades to an archive without media.
func Unpack(data []byte) (*Package, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip.NewReader() > %w", err)
	}

	entries := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		entries[f.Name] = f
	}

	dbEntry := findDatabaseEntry(entries)
	if dbEntry == nil {
		return nil, ErrNoDatabase
	}
	database, err := readEntry(dbEntry)
	if err != nil {
		return nil, fmt.Errorf("read database entry > %w", err)
	}

	pkg := &Package{Database: database, Media: map[string][]byte{}}

	manifestEntry, ok := entries[MediaManifestName]
	if !ok {
		return pkg, nil
	}
	manifestJSON, err := readEntry(manifestEntry)
	if err != nil {
		return pkg, nil
	}
	manifest := map[string]string{}
	if err := json.Unmarshal(manifestJSON, &manifest); err != nil {
		// Third-party decks occasionally ship broken manifests; the
		// cards still import, just without media.
		return pkg, nil
	}

	for index, name := range manifest {
		entry, ok := entries[index]
		if !ok {
			continue
		}
		blob, err := readEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("read media entry %s (%s) > %w", index, name, err)
		}
		pkg.Media[name] = blob
	}
	return pkg, nil
}

// findDatabaseEntry locates the collection database by its fixed name, or
// failing that by extension, which tolerates exporters using a prefix path.
func findDatabaseEntry(entries map[string]*zip.File) *zip.File {
	if f, ok := entries[anki.DatabaseEntryName]; ok {
		return f
	}
	var fallback *zip.File
	for name, f := range entries {
		if strings.HasSuffix(name, ".anki2") {
			if fallback == nil || name < fallback.Name {
				fallback = f
			}
		}
	}
	return fallback
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("entry.Open() > %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll() > %w", err)
	}
	return data, nil
}

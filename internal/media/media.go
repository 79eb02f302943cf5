// Package media resolves media references in card text for both
// directions of the conversion. On export, vault embeds and remote URLs
// become Anki references and the file bytes are collected for the
// archive. On import, Anki references become vault embeds and archive
// files are saved under collision-free names.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ![[name.png]] wiki-style embed
	embedPattern = regexp.MustCompile(`!\[\[([^\]|]+)(?:\|[^\]]*)?\]\]`)
	// ![alt](target) markdown image
	linkPattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)
	// <img src="name"> in Anki field HTML
	imgPattern = regexp.MustCompile(`<img[^>]+src="([^"]+)"[^>]*/?>`)
	// [sound:name] in Anki field HTML
	soundPattern = regexp.MustCompile(`\[sound:([^\]]+)\]`)
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".ogg":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".opus": true,
}

// IsAudio reports whether a file name looks like an audio asset.
func IsAudio(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// AnkiReference renders the target-format reference for a media file.
func AnkiReference(name string) string {
	if IsAudio(name) {
		return "[sound:" + name + "]"
	}
	return `<img src="` + name + `">`
}

// NativeReference renders the vault embed for a media file.
func NativeReference(name string) string {
	return "![[" + name + "]]"
}

// Collector accumulates media files for one export batch while rewriting
// card text to the target reference syntax. Files that cannot be resolved
// are recorded and left untouched in the text.
type Collector struct {
	vaultDir  string
	mediaDirs []string
	fetcher   *Fetcher
	files     map[string][]byte
	missing   []string
}

// NewCollector returns a collector looking up local files under vaultDir
// and each of mediaDirs. A nil fetcher disables remote downloads.
func NewCollector(vaultDir string, mediaDirs []string, fetcher *Fetcher) *Collector {
	return &Collector{
		vaultDir:  vaultDir,
		mediaDirs: mediaDirs,
		fetcher:   fetcher,
		files:     map[string][]byte{},
	}
}

// Rewrite replaces every media reference in text with the target-format
// reference, collecting the file bytes on first sight. Unresolvable
// references are kept verbatim and counted as missing.
func (c *Collector) Rewrite(ctx context.Context, text string) string {
	text = embedPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := embedPattern.FindStringSubmatch(match)[1]
		return c.resolveLocal(strings.TrimSpace(name), match)
	})
	text = linkPattern.ReplaceAllStringFunc(text, func(match string) string {
		target := linkPattern.FindStringSubmatch(match)[1]
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			return c.resolveRemote(ctx, target, match)
		}
		return c.resolveLocal(target, match)
	})
	return text
}

func (c *Collector) resolveLocal(name, original string) string {
	base := filepath.Base(name)
	if _, ok := c.files[base]; ok {
		return AnkiReference(base)
	}
	for _, dir := range append([]string{c.vaultDir}, c.mediaDirs...) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		c.files[base] = data
		return AnkiReference(base)
	}
	slog.Default().Warn("media file not found", "name", name)
	c.missing = append(c.missing, name)
	return original
}

func (c *Collector) resolveRemote(ctx context.Context, target, original string) string {
	if c.fetcher == nil {
		c.missing = append(c.missing, target)
		return original
	}
	name := remoteName(target)
	if _, ok := c.files[name]; ok {
		return AnkiReference(name)
	}
	data, err := c.fetcher.Fetch(ctx, target)
	if err != nil {
		slog.Default().Warn("media download failed", "url", target, "error", err)
		c.missing = append(c.missing, target)
		return original
	}
	c.files[name] = data
	return AnkiReference(name)
}

// remoteName derives a usable file name from a URL path, falling back to
// a hash-free generic name when the path has none.
func remoteName(target string) string {
	parsed, err := url.Parse(target)
	if err != nil || path.Base(parsed.Path) == "/" || path.Base(parsed.Path) == "." {
		return "remote-media"
	}
	return path.Base(parsed.Path)
}

// Files returns the collected name-to-bytes map.
func (c *Collector) Files() map[string][]byte {
	return c.files
}

// Missing returns the references that could not be resolved, in the order
// they were first seen.
func (c *Collector) Missing() []string {
	return c.missing
}

// References extracts the media file names referenced by an Anki field
// text, in order of first appearance.
func References(text string) []string {
	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, match := range imgPattern.FindAllStringSubmatch(text, -1) {
		add(match[1])
	}
	for _, match := range soundPattern.FindAllStringSubmatch(text, -1) {
		add(match[1])
	}
	return names
}

// RewriteInbound converts Anki media references to vault embeds, applying
// the old-name to new-name map produced while saving the archive media.
func RewriteInbound(text string, renames map[string]string) string {
	text = imgPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := imgPattern.FindStringSubmatch(match)[1]
		return NativeReference(renamed(name, renames))
	})
	text = soundPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := soundPattern.FindStringSubmatch(match)[1]
		return NativeReference(renamed(name, renames))
	})
	return text
}

func renamed(name string, renames map[string]string) string {
	if renamed, ok := renames[name]; ok {
		return renamed
	}
	return name
}

// SaveAll writes archive media files into destDir, renaming on collision
// with existing files, and returns the old-name to new-name map.
func SaveAll(destDir string, files map[string][]byte) (map[string]string, error) {
	if len(files) == 0 {
		return map[string]string{}, nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", destDir, err)
	}

	renames := make(map[string]string, len(files))
	for name, data := range files {
		target := uniqueName(destDir, filepath.Base(name))
		if err := os.WriteFile(filepath.Join(destDir, target), data, 0o644); err != nil {
			return nil, fmt.Errorf("os.WriteFile(%s) > %w", target, err)
		}
		renames[name] = target
	}
	return renames, nil
}

// uniqueName returns base, or "stem 1.ext", "stem 2.ext" and so on until
// no file with that name exists in dir.
func uniqueName(dir, base string) string {
	if _, err := os.Stat(filepath.Join(dir, base)); err != nil {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s %d%s", stem, i, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); err != nil {
			return candidate
		}
	}
}

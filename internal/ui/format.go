package ui

import (
	"strings"
)

const (
	emptyCue     = "—"
	playlistMark = " 🎵"
	playlistExt  = ".xspf"
)

// FormatDisplayName renders a cue value for the service panel: the file
// extension is dropped, and a note is appended when the cue's media path is
// an XSPF playlist. Empty values render as an em dash.
func FormatDisplayName(name, path string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return emptyCue
	}
	stem := trimExt(name)
	if strings.EqualFold(ext(path), playlistExt) {
		return stem + playlistMark
	}
	return stem
}

// ext returns the extension of the last path element. Leading dots do not
// start an extension, so ".profile" has none.
func ext(p string) string {
	base := p
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		base = p[i+1:]
	}
	dot := strings.LastIndex(base, ".")
	if dot <= 0 || strings.Trim(base[:dot], ".") == "" {
		return ""
	}
	return base[dot:]
}

func trimExt(p string) string {
	return strings.TrimSuffix(p, ext(p))
}

// truncateMiddle shortens s to max runes, keeping more of the end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 5 {
		return string(runes[:max])
	}
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return string(runes[:startLen]) + "..." + string(runes[len(runes)-endLen:])
}

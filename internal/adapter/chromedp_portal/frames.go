package chromedp_portal

import (
	"fmt"
	"strconv"
	"strings"
)

// frameInfo describes one child browsing context of the active document.
type frameInfo struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// listFramesJS enumerates the immediate <frame> children of the top-level
// document.
const listFramesJS = `Array.from(document.getElementsByTagName('frame')).map(f => ({name: f.name || '', src: f.src || ''}))`

// listIframesJS enumerates embedded <iframe> elements of a document.
const listIframesJS = `Array.from(document.getElementsByTagName('iframe')).map(f => ({name: f.name || '', src: f.src || ''}))`

// hasFrame reports whether a frame with the given name is present.
func hasFrame(frames []frameInfo, name string) bool {
	for _, f := range frames {
		if f.Name == name {
			return true
		}
	}
	return false
}

// agendaFrameSrc returns the src of the first frame whose URL carries the
// schedule-agenda marker, or "" when none matches.
func agendaFrameSrc(frames []frameInfo) string {
	for _, f := range frames {
		if f.Src != "" && strings.Contains(f.Src, agendaMarker) {
			return f.Src
		}
	}
	return ""
}

// inFrame scopes a JS expression to the active frame. The portal's frames
// are same-origin, so the frame's own window can evaluate on our behalf.
func inFrame(frame, expr string) string {
	if frame == "" {
		return expr
	}
	return fmt.Sprintf("window.frames[%q].eval(%s)", frame, strconv.Quote(expr))
}

// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webengine

import (
	"strconv"
	"strings"
)

// PathParam is a single captured (name, value) pair from a matched path
// expression. Order is preserved in the sequence the expression declared
// the parameters.
type PathParam struct {
	Name  string
	Value string
}

// QueryParam is a single (name, value) pair parsed from a request's query
// string, in declaration order. Values are not URL-decoded here; callers
// that need decoding call URLDecode themselves, matching spec.md §4.1's
// "URL decoding of query values is the caller's responsibility".
type QueryParam struct {
	Name  string
	Value string
}

// SplitPathAndQuery separates a request URI into its path and raw query
// components at the first '?'. If there is no '?', query is empty.
func SplitPathAndQuery(uri string) (path, query string) {
	if idx := strings.IndexByte(uri, '?'); idx >= 0 {
		return uri[:idx], uri[idx+1:]
	}
	return uri, ""
}

// ParseQuery parses a raw query string (without the leading '?') into an
// ordered sequence of name/value pairs. Each '&'-separated part is split on
// its first '=': a part with no '=' yields a value-less parameter (empty
// value). Names and values are trimmed of surrounding whitespace.
func ParseQuery(raw string) []QueryParam {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "&")
	params := make([]QueryParam, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		params = append(params, QueryParam{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return params
}

// unreserved reports whether b is in the URL-encoding unreserved set:
// ALPHA / DIGIT / "-" / "_" / "." / "~".
func unreserved(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '_' || b == '.' || b == '~':
		return true
	}
	return false
}

const upperHex = "0123456789ABCDEF"

// URLEncode percent-encodes every byte outside the unreserved set, using
// uppercase hex digits, per spec.md §4.1.
func URLEncode(s string) string {
	var needsEscape bool
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// URLDecode reverses URLEncode. A malformed trailing "%" sequence (fewer
// than two following hex digits) is dropped silently rather than erroring,
// matching spec.md §4.1.
func URLDecode(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			// Malformed trailing '%' - drop silently.
			break
		}
		hi, ok1 := hexVal(s[i+1])
		lo, ok2 := hexVal(s[i+2])
		if !ok1 || !ok2 {
			// Not actually %HH; drop the '%' silently and continue past it.
			continue
		}
		b.WriteByte(byte(hi<<4 | lo))
		i += 2
	}
	return b.String()
}

// NormalizePath collapses leading slashes to one and strips a trailing
// slash unless the path is exactly "/".
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	for len(path) > 1 && path[0] == '/' && path[1] == '/' {
		path = path[1:]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func splitSegments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// MatchPath runs the path-pattern matcher: expr is a route expression
// (literal segments, ":name" parameter segments, an optional trailing "*"
// wildcard) and path is a concrete request path with the query already
// stripped. It returns whether the path matches and, if so, the ordered
// captured parameters. See spec.md §4.1 for the full semantics, including
// the fast path for patterns with no ':' or '*'.
func MatchPath(expr, path string) (bool, []PathParam) {
	normExpr := NormalizePath(expr)
	normPath := NormalizePath(path)

	if normExpr == normPath {
		return true, nil
	}

	exprSegs := splitSegments(normExpr)
	pathSegs := splitSegments(normPath)

	var params []PathParam
	ei := 0
	for ei < len(exprSegs) {
		seg := exprSegs[ei]

		if seg == "*" {
			// Trailing wildcard: consumes all remaining concrete segments
			// (possibly zero), joined with '/'. Matches immediately even
			// if '*' appears mid-pattern.
			remaining := pathSegs[min(ei, len(pathSegs)):]
			params = append(params, PathParam{Name: "*", Value: URLDecode(strings.Join(remaining, "/"))})
			return true, params
		}

		if ei >= len(pathSegs) {
			return false, nil
		}

		pseg := pathSegs[ei]

		if strings.HasPrefix(seg, ":") {
			if pseg == "" {
				return false, nil
			}
			params = append(params, PathParam{Name: seg[1:], Value: URLDecode(pseg)})
			ei++
			continue
		}

		if seg != pseg {
			return false, nil
		}
		ei++
	}

	// Expression exhausted: any leftover concrete segments mean no match.
	if ei < len(pathSegs) {
		return false, nil
	}
	return true, params
}

// method validity table, per spec.md §4.1.
var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// ValidMethod reports whether method (already upper-cased by the caller, or
// not - ValidMethod upper-cases internally) is one of the seven recognized
// HTTP methods.
func ValidMethod(method string) bool {
	return validMethods[strings.ToUpper(method)]
}

// staticExtensions maps a recognized static-asset extension to its MIME
// type. Keys are lower-case; IsStaticAsset and MIMEType lower-case the
// extension before looking it up, so matching is case-insensitive. The
// extension is the text after the last '.' in the final path segment
// (query already stripped by the caller).
var staticExtensions = map[string]string{
	// html
	"html": "text/html", "htm": "text/html",
	// css/js
	"css": "text/css", "js": "application/javascript", "mjs": "application/javascript",
	// images
	"png": "image/png", "jpg": "image/jpeg", "jpeg": "image/jpeg",
	"gif": "image/gif", "svg": "image/svg+xml", "webp": "image/webp", "ico": "image/x-icon",
	// fonts
	"woff": "font/woff", "woff2": "font/woff2", "ttf": "font/ttf", "otf": "font/otf", "eot": "application/vnd.ms-fontobject",
	// audio
	"mp3": "audio/mpeg", "wav": "audio/wav", "ogg": "audio/ogg",
	// video
	"mp4": "video/mp4", "webm": "video/webm", "avi": "video/x-msvideo",
	// archives
	"zip": "application/zip", "gz": "application/gzip", "tar": "application/x-tar",
	// documents
	"pdf": "application/pdf", "txt": "text/plain", "md": "text/markdown",
	// data
	"json": "application/json", "xml": "application/xml", "csv": "text/csv",
}

const defaultMIMEType = "application/octet-stream"

// pathExtension returns the text after the last '.' in path's final
// segment, or "" if that segment has no '.' or ends with one. A dotfile
// name such as ".json" yields "json".
func pathExtension(path string) string {
	slash := strings.LastIndexByte(path, '/')
	base := path
	if slash >= 0 {
		base = path[slash+1:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 || dot == len(base)-1 {
		return ""
	}
	return base[dot+1:]
}

// IsStaticAsset reports whether path's extension is in the recognized
// static-asset allowlist. path must have its query already stripped.
func IsStaticAsset(path string) bool {
	ext := pathExtension(path)
	if ext == "" {
		return false
	}
	_, ok := staticExtensions[strings.ToLower(ext)]
	return ok
}

// MIMEType returns the MIME type for path's extension, falling back to
// application/octet-stream when the extension is unknown.
func MIMEType(path string) string {
	ext := strings.ToLower(pathExtension(path))
	if mime, ok := staticExtensions[ext]; ok {
		return mime
	}
	return defaultMIMEType
}

// SanitizePath textually deletes every occurrence of ".." from path, then
// collapses the runs of '/' that the deletion leaves behind, so that
// "/../app.js" becomes "/app.js". This is defense-in-depth only: callers
// must still resolve and verify filesystem containment before opening a
// file (see Server.serveStatic).
func SanitizePath(path string) string {
	for strings.Contains(path, "..") {
		path = strings.ReplaceAll(path, "..", "")
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}

// FormatContentLength renders a body length the way the Content-Length
// header expects it: a plain base-10 integer.
func FormatContentLength(n int) string {
	return strconv.Itoa(n)
}

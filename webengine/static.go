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
	"os"
	"path/filepath"
	"strings"

	"github.com/aofei/mimesniffer"
)

// serveStatic resolves req.Path() against each static root in registration
// order, stopping at the first file that opens. The URL path is sanitized
// before ever touching the filesystem; SanitizePath alone is
// defense-in-depth, so the resolved path's containment is re-checked
// against each candidate root below.
func (s *Server) serveStatic(req *Request, resp *Response, roots []string) {
	clean := SanitizePath(req.Path())

	for _, root := range roots {
		candidate := filepath.Join(root, filepath.FromSlash(clean))

		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		absCandidate, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(absCandidate, absRoot+string(filepath.Separator)) && absCandidate != absRoot {
			s.emit(DiagStaticTraversalBlocked, "resolved static path escaped its root", map[string]any{
				"path": req.Path(),
				"root": root,
			})
			continue
		}

		data, err := os.ReadFile(absCandidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			herr := NewHTTPError("failed to read static file: "+err.Error(), WithStatus(500, "Internal Server Error"))
			s.errorHook(req, resp, herr)
			return
		}

		contentType := MIMEType(clean)
		if s.sniffStatic && contentType == defaultMIMEType {
			if sniffed := mimesniffer.Sniff(data); sniffed != "" {
				contentType = sniffed
			}
		}

		resp.SetStatus(200, "OK")
		resp.SetContentType(contentType)
		resp.SetBody(data)
		return
	}

	resp.SetStatus(404, "Not Found")
	resp.SetBody([]byte("404 Not Found"))
}

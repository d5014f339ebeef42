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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaticServer(t *testing.T, root string) *Server {
	t.Helper()
	s, err := NewServer(&fakeTransport{}, WithStaticRoot(root))
	require.NoError(t, err)
	return s
}

func TestServeStaticServesExistingFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte("console.log(1)"), 0o644))

	s := newStaticServer(t, root)
	req := newTestRequest(t, "GET", "/app.js")
	resp := newTestResponse(t)

	s.serveStatic(req, resp, []string{root})

	assert.Equal(t, 200, resp.Status())
	assert.Equal(t, []byte("console.log(1)"), resp.Body())
}

func TestServeStaticReturns404ForMissingFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := newStaticServer(t, root)
	req := newTestRequest(t, "GET", "/missing.js")
	resp := newTestResponse(t)

	s.serveStatic(req, resp, []string{root})

	assert.Equal(t, 404, resp.Status())
}

func TestServeStaticBlocksPathTraversal(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// A secret file that lives next to, but outside, the static root.
	secretDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secretDir, "secret.txt"), []byte("top secret"), 0o644))

	s := newStaticServer(t, root)

	var events []DiagnosticEvent
	s.diagnostics = DiagnosticHandlerFunc(func(e DiagnosticEvent) { events = append(events, e) })

	// SanitizePath strips the ".." sequences before this reaches the
	// filesystem, so the escape attempt resolves to a path inside root
	// that does not exist: the result is a plain 404 and no file outside
	// root is ever read.
	req := newTestRequest(t, "GET", "/../../../../../../etc/passwd")
	resp := newTestResponse(t)

	s.serveStatic(req, resp, []string{root})

	assert.Equal(t, 404, resp.Status())
	assert.NotContains(t, string(resp.Body()), "top secret")
}

func TestServeStaticTriesRootsInOrder(t *testing.T) {
	t.Parallel()

	rootA := t.TempDir()
	rootB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(rootB, "only-in-b.css"), []byte("body{}"), 0o644))

	s := newStaticServer(t, rootA)
	req := newTestRequest(t, "GET", "/only-in-b.css")
	resp := newTestResponse(t)

	s.serveStatic(req, resp, []string{rootA, rootB})

	assert.Equal(t, 200, resp.Status())
	assert.Equal(t, []byte("body{}"), resp.Body())
}

func TestServeStaticRoutesIOErrorToErrorHook(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// A directory with a recognized static extension: os.ReadFile fails on
	// it with an error that is not os.IsNotExist, exercising the I/O-error
	// branch distinct from the plain-404 not-found branch.
	require.NoError(t, os.Mkdir(filepath.Join(root, "blocked.css"), 0o755))

	var hookCalled bool
	s, err := NewServer(&fakeTransport{}, WithStaticRoot(root), WithErrorHook(func(_ *Request, resp *Response, herr *HTTPError) {
		hookCalled = true
		resp.SetStatus(herr.Code(), herr.Reason())
	}))
	require.NoError(t, err)

	req := newTestRequest(t, "GET", "/blocked.css")
	resp := newTestResponse(t)

	s.serveStatic(req, resp, []string{root})

	assert.True(t, hookCalled, "an I/O error reading the file must reach the error hook, not a silent 404")
	assert.Equal(t, 500, resp.Status())
}

func TestServeStaticSetsMIMETypeFromExtension(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "site.css"), []byte("body{color:red}"), 0o644))

	s := newStaticServer(t, root)
	req := newTestRequest(t, "GET", "/site.css")
	resp := newTestResponse(t)

	s.serveStatic(req, resp, []string{root})

	assert.Equal(t, "text/css", resp.Header("Content-Type"))
}

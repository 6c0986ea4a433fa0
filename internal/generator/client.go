// Package generator talks to the external code generation backend.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/util"
	"github.com/petervdpas/codeseed/internal/workspace"
)

var log = logging.Logger("codeseed/generator")

const (
	DefaultPath = "/generate-site"

	msgFailed    = "Failed to generate site."
	msgNoPreview = "Something went wrong. No preview URL returned."
)

// maxResponse caps how much of a backend reply is read.
const maxResponse = 16 << 20

// Result is what the backend produced for one prompt. Exactly one of Files,
// PreviewURL or Stored is usually set.
type Result struct {
	Files      map[string]string `json:"files,omitempty"`
	PreviewURL string            `json:"previewUrl,omitempty"`
	// Stored means the backend persisted the project itself (status 1).
	Stored    bool   `json:"stored,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

type Client struct {
	baseURL string
	path    string
	token   string
	client  *http.Client
}

// New returns a client for baseURL. An empty path uses DefaultPath and a
// non-positive timeout uses util.DefaultGenerateTimeout.
func New(baseURL, path, token string, timeout time.Duration) *Client {
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if timeout <= 0 {
		timeout = util.DefaultGenerateTimeout
	}
	return &Client{
		baseURL: util.NormalizeURL(baseURL),
		path:    path,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Generate submits prompt and returns the generated files or preview link.
// An empty prompt is rejected before any request is made. Backend and network
// failures come back as *errs.TransportError carrying a user-facing message.
func (c *Client) Generate(ctx context.Context, prompt string) (Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{}, errs.Invalid("prompt", "must not be empty")
	}
	if c.baseURL == "" {
		return Result{}, &errs.TransportError{Op: "generate", Message: "No generation backend configured."}
	}

	body, _ := json.Marshal(map[string]string{"prompt": prompt})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.path, bytes.NewReader(body))
	if err != nil {
		return Result{}, &errs.TransportError{Op: "generate", Message: msgFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	setAuthHeader(req, c.token)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warnf("generate: %v", err)
		return Result{}, &errs.TransportError{Op: "generate", Message: msgFailed, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return Result{}, &errs.TransportError{Op: "generate", Status: resp.StatusCode, Message: msgFailed, Err: err}
	}
	log.Infof("generate: %d in %s (%d bytes)", resp.StatusCode, time.Since(start).Round(time.Millisecond), len(raw))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := backendError(raw)
		if msg == "" {
			msg = msgFailed
		}
		return Result{}, &errs.TransportError{
			Op:      "generate",
			Status:  resp.StatusCode,
			Message: msg,
			Err:     fmt.Errorf("backend returned %s", resp.Status),
		}
	}

	if msg := backendError(raw); msg != "" {
		return Result{}, &errs.TransportError{Op: "generate", Status: resp.StatusCode, Message: msg}
	}
	res, err := c.decode(raw)
	if err != nil {
		return Result{}, &errs.TransportError{Op: "generate", Status: resp.StatusCode, Message: msgNoPreview, Err: err}
	}
	return res, nil
}

var errEmptyResult = errors.New("response has no files, preview url or status")

// decode accepts every reply shape the backend is known to send:
// {"previewUrl": "/..."}, {"files": {...}}, {"tree": [...]}, {"status": 1},
// or the files as top-level keys ({"index.html": "...", "style.css": "..."}).
func (c *Client) decode(raw []byte) (Result, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	var res Result
	if v, ok := top["previewUrl"]; ok {
		var u string
		if json.Unmarshal(v, &u) == nil && u != "" {
			if strings.HasPrefix(u, "/") {
				u = c.baseURL + u
			}
			res.PreviewURL = u
		}
	}
	if v, ok := top["files"]; ok {
		var files map[string]string
		if err := json.Unmarshal(v, &files); err != nil {
			return Result{}, fmt.Errorf("decode files: %w", err)
		}
		res.Files = files
	}
	if v, ok := top["tree"]; ok && res.Files == nil {
		tree, err := workspace.ParseGenerated(v)
		if err != nil {
			return Result{}, err
		}
		for _, e := range workspace.Files(tree) {
			if res.Files == nil {
				res.Files = make(map[string]string)
			}
			res.Files[e.Path] = e.Content
		}
	}
	if v, ok := top["project_id"]; ok {
		_ = json.Unmarshal(v, &res.ProjectID)
	}
	if v, ok := top["status"]; ok {
		var status int
		if json.Unmarshal(v, &status) == nil && status == 1 {
			res.Stored = true
		}
	}
	if res.Files == nil {
		for k, v := range top {
			if !strings.Contains(k, ".") {
				continue
			}
			var content string
			if json.Unmarshal(v, &content) != nil {
				continue
			}
			if res.Files == nil {
				res.Files = make(map[string]string)
			}
			res.Files[k] = content
		}
	}

	if len(res.Files) == 0 && res.PreviewURL == "" && !res.Stored {
		return Result{}, errEmptyResult
	}
	return res, nil
}

// backendError extracts {"error": "..."} from a reply body.
func backendError(raw []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &e) != nil {
		return ""
	}
	return strings.TrimSpace(e.Error)
}

// setAuthHeader sets Bearer authorization if token is non-empty.
func setAuthHeader(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

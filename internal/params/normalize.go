// internal/params/normalize.go
//
// Body normalization.
//
// Context
// -------
// Handlers on this site never touch net/http parsing.  The Normalizer
// folds three heterogeneous sources into one Params map per request:
//
//	path captures → query string → body
//
// with later sources winning on key collision, because the body is the
// most explicit restatement of user intent.  URL-encoded bodies decode
// flat.  Multipart bodies walk part by part in arrival order: file
// parts hand their bytes to the upload Sink and store only the
// generated name; text parts named "base[N]" rebuild a list that is
// comma-joined under the bare base name once all parts are read.
//
// Failure posture for user-supplied garbage is forgiving: a
// malformed individual part is skipped, a broken multipart stream keeps
// whatever merged so far and logs a warning, and both body paths are
// capped at MaxBodyBytes before anything buffers.

package params

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/upload"
)

// DefaultMaxBodyBytes caps request bodies at 32 MiB, enough for a
// photo-album upload without letting one request buffer the machine.
const DefaultMaxBodyBytes = 32 << 20

// ErrBodyTooLarge is returned when a body exceeds the configured cap.
var ErrBodyTooLarge = errors.New("params: request body too large")

// ErrBadEncoding is returned for malformed query or urlencoded-body
// input.  It maps to a generic client error upstream.
var ErrBadEncoding = errors.New("params: malformed form encoding")

// Normalizer merges request inputs into Params.  One instance serves
// all requests; it holds no per-request state.
type Normalizer struct {
	sink     upload.Sink
	maxBytes int64
}

// NewNormalizer wires the upload sink and body cap.  maxBytes <= 0
// selects DefaultMaxBodyBytes.
func NewNormalizer(sink upload.Sink, maxBytes int64) *Normalizer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return &Normalizer{sink: sink, maxBytes: maxBytes}
}

// Normalize builds the merged map for r.  pathVars come from the
// router.  The returned error is nil for body-stream trouble (the
// partial map survives) and non-nil only for conditions that reject
// the request outright: bad query encoding, bad urlencoded body, or an
// oversized body.
func (n *Normalizer) Normalize(r *http.Request, pathVars map[string]string) (*Params, error) {
	p := New()

	// Path captures first.  Sorted for determinism; routers hand these
	// over as a map.
	names := make([]string, 0, len(pathVars))
	for name := range pathVars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.Set(name, pathVars[name])
	}

	// Query string, decoded pair by pair in arrival order.
	if err := decodePairs(r.URL.RawQuery, p); err != nil {
		return nil, err
	}

	// Body, by declared content type.  Absent or unrecognized types
	// contribute nothing.
	ct := r.Header.Get("Content-Type")
	if ct == "" || r.Body == nil {
		return p, nil
	}
	mediaType, mtParams, err := mime.ParseMediaType(ct)
	if err != nil {
		return p, nil
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		return p, n.normalizeForm(r, p)
	case "multipart/form-data":
		boundary := mtParams["boundary"]
		if boundary == "" {
			return p, nil
		}
		return p, n.normalizeMultipart(r, boundary, p)
	default:
		return p, nil
	}
}

// normalizeForm decodes a urlencoded body into p, bounded by maxBytes.
func (n *Normalizer) normalizeForm(r *http.Request, p *Params) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, n.maxBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return ErrBodyTooLarge
		}
		return err
	}
	return decodePairs(string(body), p)
}

// normalizeMultipart walks parts in arrival order.  File parts go to
// the sink; "base[N]" text parts collect into per-base lists that are
// comma-joined after the last part.
func (n *Normalizer) normalizeMultipart(r *http.Request, boundary string, p *Params) error {
	mr := multipart.NewReader(http.MaxBytesReader(nil, r.Body, n.maxBytes), boundary)

	arrays := make(map[string][]string)
	var arrayOrder []string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return ErrBodyTooLarge
			}
			// Transport-level stream damage.  Keep what we have.
			zap.S().Warnw("multipart stream aborted, keeping parsed fields",
				"err", err, "fields", p.Len())
			break
		}

		name := part.FormName()
		if name == "" {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return ErrBodyTooLarge
			}
			// One bad part is not fatal; skip it.
			zap.S().Warnw("multipart part unreadable, skipped",
				"field", name, "err", err)
			continue
		}

		if part.FileName() != "" {
			n.storeFile(r, p, name, part.Header.Get("Content-Type"), data)
			continue
		}

		if base, idx, ok := arrayField(name); ok {
			list := arrays[base]
			if _, seen := arrays[base]; !seen {
				arrayOrder = append(arrayOrder, base)
				p.Set(base, "") // reserve map position at first sight
			}
			for len(list) <= idx {
				list = append(list, "")
			}
			list[idx] = string(data) // duplicate index overwrites
			arrays[base] = list
			continue
		}

		p.Set(name, string(data))
	}

	for _, base := range arrayOrder {
		p.Set(base, strings.Join(arrays[base], ","))
	}
	return nil
}

// storeFile forwards file bytes to the sink and records the generated
// name.  A sink failure leaves the field unset; whether that matters is
// the downstream handler's call.
func (n *Normalizer) storeFile(r *http.Request, p *Params, field, contentType string, data []byte) {
	name, err := n.sink.Store(r.Context(), contentType, data)
	if err != nil {
		zap.S().Warnw("upload sink failed, field left unset",
			"field", field, "content_type", contentType, "bytes", len(data), "err", err)
		return
	}
	p.Set(field, name)
}

// decodePairs splits "a=1&b=2" input and percent-decodes each side,
// preserving arrival order.  Any undecodable key or value fails the
// whole parse.
func decodePairs(raw string, p *Params) error {
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return ErrBadEncoding
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return ErrBadEncoding
		}
		p.Set(key, val)
	}
	return nil
}

// maxArrayIndex bounds the padding a single "base[N]" part can force.
// Indices past it degrade to a plain field under the literal name.
const maxArrayIndex = 4096

// arrayField recognizes the "base[N]" naming convention with a
// non-negative integer index.
func arrayField(name string) (base string, idx int, ok bool) {
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return "", 0, false
	}
	numeral := name[open+1 : len(name)-1]
	i, err := strconv.Atoi(numeral)
	if err != nil || i < 0 || i > maxArrayIndex ||
		strings.HasPrefix(numeral, "+") || strings.HasPrefix(numeral, "-") {
		return "", 0, false
	}
	return name[:open], i, true
}

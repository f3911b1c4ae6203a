// Package media picks how a catalog item is shown: cover image, uploaded
// video, embedded YouTube video or nothing.
package media

import (
	"net/url"
	"strings"
)

// Kind is the selected representation.
type Kind string

const (
	KindNone          Kind = "none"
	KindImage         Kind = "image"
	KindUploadedVideo Kind = "uploaded_video"
	KindExternalVideo Kind = "external_video"
)

const embedBase = "https://www.youtube.com/embed/"

// Fields are the media attributes of an item. All are optional.
type Fields struct {
	ImageFile string
	VideoFile string
	VideoURL  string
}

// Media is the resolved representation. Source is empty for KindNone.
type Media struct {
	Kind   Kind
	Source string
}

// Resolve applies the display priority: image, then uploaded video, then a
// recognised external video link. Server-relative sources are returned as is.
func Resolve(f Fields) Media {
	if src := strings.TrimSpace(f.ImageFile); src != "" {
		return Media{Kind: KindImage, Source: src}
	}
	if src := strings.TrimSpace(f.VideoFile); src != "" {
		return Media{Kind: KindUploadedVideo, Source: src}
	}
	if embed, ok := EmbedURL(f.VideoURL); ok {
		return Media{Kind: KindExternalVideo, Source: embed}
	}
	return Media{Kind: KindNone}
}

// EmbedURL converts a YouTube watch or short link into its embeddable form.
func EmbedURL(raw string) (string, bool) {
	id, ok := VideoID(raw)
	if !ok {
		return "", false
	}
	return embedBase + id, true
}

// VideoID extracts the identifier from youtube.com/watch?v=<id> and youtu.be/<id>
// links. The identifier ends at the next '&'.
func VideoID(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())

	var id string
	switch {
	case isYouTubeHost(host):
		if u.Path != "/watch" {
			return "", false
		}
		// Take v= verbatim from the raw query so ids stop at the first '&'.
		for _, part := range strings.Split(u.RawQuery, "&") {
			if strings.HasPrefix(part, "v=") {
				id = strings.TrimPrefix(part, "v=")
				break
			}
		}
	case host == "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
		if i := strings.IndexByte(id, '&'); i >= 0 {
			id = id[:i]
		}
	default:
		return "", false
	}
	if !validID(id) {
		return "", false
	}
	return id, true
}

func isYouTubeHost(host string) bool {
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}

func validID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Resolver turns server-relative media paths into absolute URLs on the backend origin.
type Resolver struct {
	base *url.URL
}

// NewResolver constructs a Resolver for the backend origin. An empty origin
// leaves paths relative.
func NewResolver(origin string) (*Resolver, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return &Resolver{}, nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return nil, err
	}
	return &Resolver{base: u}, nil
}

// Resolve is Resolve with uploaded sources made absolute.
func (r *Resolver) Resolve(f Fields) Media {
	m := Resolve(f)
	if m.Kind == KindImage || m.Kind == KindUploadedVideo {
		m.Source = r.Asset(m.Source)
	}
	return m
}

// Asset resolves one server-relative path.
func (r *Resolver) Asset(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || r == nil || r.base == nil {
		return p
	}
	ref, err := url.Parse(p)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return p
	}
	return r.base.ResolveReference(ref).String()
}

// Preview describes the standalone video dialog. The embedded external link
// wins over an uploaded file there.
type Preview struct {
	Kind   Kind
	Source string
}

// VideoPreview picks the video to show in the preview dialog, if any.
func (r *Resolver) VideoPreview(f Fields) (Preview, bool) {
	if embed, ok := EmbedURL(f.VideoURL); ok {
		return Preview{Kind: KindExternalVideo, Source: embed}, true
	}
	if src := strings.TrimSpace(f.VideoFile); src != "" {
		return Preview{Kind: KindUploadedVideo, Source: r.Asset(src)}, true
	}
	return Preview{}, false
}

package media

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePriority(t *testing.T) {
	t.Parallel()

	const yt = "https://www.youtube.com/watch?v=ABC123"

	cases := []struct {
		name   string
		fields Fields
		want   Media
	}{
		{"image wins over everything", Fields{ImageFile: "/uploads/a.jpg", VideoFile: "/uploads/a.mp4", VideoURL: yt}, Media{KindImage, "/uploads/a.jpg"}},
		{"uploaded video before link", Fields{VideoFile: "/uploads/a.mp4", VideoURL: yt}, Media{KindUploadedVideo, "/uploads/a.mp4"}},
		{"youtube link", Fields{VideoURL: yt}, Media{KindExternalVideo, "https://www.youtube.com/embed/ABC123"}},
		{"unrecognised host", Fields{VideoURL: "https://vimeo.com/12345"}, Media{Kind: KindNone}},
		{"blank fields", Fields{ImageFile: "  ", VideoFile: "", VideoURL: " "}, Media{Kind: KindNone}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Resolve(tc.fields), tc.name)
	}
}

func TestVideoID(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://www.youtube.com/watch?v=ABC123&t=5": "ABC123",
		"https://youtube.com/watch?v=dQw4w9WgXcQ":    "dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=x_y-z":        "x_y-z",
		"https://youtu.be/ABC123":                    "ABC123",
		"youtu.be/ABC123?t=10":                       "ABC123",
		"www.youtube.com/watch?v=ABC123":             "ABC123",
	}
	for in, want := range cases {
		got, ok := VideoID(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}

	for _, bad := range []string{
		"",
		"https://www.youtube.com/channel/UC123",
		"https://www.youtube.com/watch?list=PL1",
		"https://notyoutube.com/watch?v=ABC",
		"https://youtu.be/",
		"https://www.youtube.com/watch?v=<script>",
		"::::",
	} {
		_, ok := VideoID(bad)
		require.False(t, ok, bad)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	t.Parallel()

	images := []string{"", "/uploads/i.png"}
	videos := []string{"", "/uploads/v.mp4"}
	links := []string{"", "https://youtu.be/ID1", "https://example.com/v"}
	for _, img := range images {
		for _, vid := range videos {
			for _, link := range links {
				f := Fields{ImageFile: img, VideoFile: vid, VideoURL: link}
				first := Resolve(f)
				require.Equal(t, first, Resolve(f))
				switch {
				case img != "":
					require.Equal(t, KindImage, first.Kind, fmt.Sprint(f))
				case vid != "":
					require.Equal(t, KindUploadedVideo, first.Kind, fmt.Sprint(f))
				case link == "https://youtu.be/ID1":
					require.Equal(t, KindExternalVideo, first.Kind, fmt.Sprint(f))
				default:
					require.Equal(t, KindNone, first.Kind, fmt.Sprint(f))
					require.Empty(t, first.Source)
				}
			}
		}
	}
}

func TestResolverMakesUploadsAbsolute(t *testing.T) {
	t.Parallel()

	r, err := NewResolver("https://api.example.com")
	require.NoError(t, err)

	m := r.Resolve(Fields{ImageFile: "/uploads/a.jpg"})
	require.Equal(t, "https://api.example.com/uploads/a.jpg", m.Source)

	m = r.Resolve(Fields{VideoURL: "https://youtu.be/XYZ"})
	require.Equal(t, "https://www.youtube.com/embed/XYZ", m.Source)

	p, ok := r.VideoPreview(Fields{VideoFile: "/uploads/v.mp4", VideoURL: "https://youtu.be/XYZ"})
	require.True(t, ok)
	require.Equal(t, KindExternalVideo, p.Kind)

	p, ok = r.VideoPreview(Fields{VideoFile: "/uploads/v.mp4"})
	require.True(t, ok)
	require.Equal(t, "https://api.example.com/uploads/v.mp4", p.Source)

	_, ok = r.VideoPreview(Fields{ImageFile: "/uploads/a.jpg"})
	require.False(t, ok)
}

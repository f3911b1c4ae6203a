package forms_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hesapvitrini.com/vitrine/internal/backend"
	"hesapvitrini.com/vitrine/internal/forms"
)

const adminToken = "admin-token"

func TestCategoryValidation(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	buf := &forms.CategoryBuffer{Name: "   "}
	res := buf.Commit(context.Background(), svc, adminToken)

	require.False(t, res.OK)
	require.Equal(t, forms.StageValidate, res.Stage)
	verr, ok := forms.AsValidationError(res.Err)
	require.True(t, ok)
	require.Equal(t, forms.MsgCategoryNameRequired, verr.Message)
	require.Zero(t, svc.CallCount("CreateCategory"))
}

func TestCategoryCommitClearsBuffer(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	buf := &forms.CategoryBuffer{Name: " CS2 ", Description: "Prime"}
	res := buf.Commit(context.Background(), svc, adminToken)

	require.True(t, res.OK)
	require.Equal(t, forms.CategoryBuffer{}, *buf)

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, "CS2", cats[len(cats)-1].Name)
}

func TestAccountValidationOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		buf  forms.AccountBuffer
		want string
	}{
		{"missing category", forms.AccountBuffer{Name: "x", Price: "10"}, forms.MsgCategoryRequired},
		{"blank name", forms.AccountBuffer{CategoryID: "c", Name: " ", Price: "10"}, forms.MsgAccountNameRequired},
		{"empty price", forms.AccountBuffer{CategoryID: "c", Name: "x"}, forms.MsgPriceInvalid},
		{"zero price", forms.AccountBuffer{CategoryID: "c", Name: "x", Price: "0"}, forms.MsgPriceInvalid},
		{"negative price", forms.AccountBuffer{CategoryID: "c", Name: "x", Price: "-5"}, forms.MsgPriceInvalid},
		{"not a number", forms.AccountBuffer{CategoryID: "c", Name: "x", Price: "abc"}, forms.MsgPriceInvalid},
		{"edit ignores category", forms.AccountBuffer{ID: "acc-1", Name: "", Price: "10"}, forms.MsgAccountNameRequired},
	}
	for _, tc := range cases {
		err := tc.buf.Validate()
		verr, ok := forms.AsValidationError(err)
		require.True(t, ok, tc.name)
		require.Equal(t, tc.want, verr.Message, tc.name)
	}

	ok := forms.AccountBuffer{CategoryID: "c", Name: "x", Price: "12,50"}
	require.NoError(t, ok.Validate())
}

func TestAccountCommitUploadsVideoThenImage(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	buf := &forms.AccountBuffer{CategoryID: "cat-lol", Name: "Yeni", Price: "99.5"}
	buf.SelectImage(backend.File{Filename: "a.png", Data: []byte("img")})
	buf.SelectVideo(backend.File{Filename: "b.mp4", Data: []byte("vid")})

	res := buf.Commit(context.Background(), svc, adminToken)
	require.True(t, res.OK)
	require.Equal(t, forms.AccountBuffer{}, *buf)
	require.Equal(t, []string{"Upload:video", "Upload:image", "CreateAccount"}, svc.Calls)

	items, err := svc.Accounts(context.Background(), "", backend.AccountFilter{Search: "Yeni"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, strings.HasSuffix(items[0].VideoFile, ".mp4"))
	require.True(t, strings.HasSuffix(items[0].ImageFile, ".png"))
	require.Equal(t, "99.5", items[0].Price.String())
}

func TestAccountCommitAbortsOnUploadFailure(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	svc.Failures["Upload:image"] = errors.New("disk full")

	buf := &forms.AccountBuffer{CategoryID: "cat-lol", Name: "Yeni", Price: "10"}
	buf.SelectVideo(backend.File{Filename: "b.mp4", Data: []byte("vid")})
	buf.SelectImage(backend.File{Filename: "a.png", Data: []byte("img")})
	before := *buf

	res := buf.Commit(context.Background(), svc, adminToken)
	require.False(t, res.OK)
	require.Equal(t, forms.StageUploadImage, res.Stage)
	require.ErrorContains(t, res.Err, "disk full")
	require.Equal(t, before, *buf)
	require.Zero(t, svc.CallCount("CreateAccount"))
}

func TestAccountCommitKeepsBufferOnWriteFailure(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	svc.Failures["CreateAccount"] = &backend.Error{Status: 500, Message: "boom"}

	buf := &forms.AccountBuffer{CategoryID: "cat-lol", Name: "Yeni", Price: "10"}
	res := buf.Commit(context.Background(), svc, adminToken)
	require.False(t, res.OK)
	require.Equal(t, forms.StageWrite, res.Stage)
	require.Equal(t, "Yeni", buf.Name)
}

func TestEditBufferUpdatesStatusAndKeepsStoredMedia(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	current, err := svc.Account(context.Background(), "", "acc-1")
	require.NoError(t, err)

	buf := forms.EditBuffer(*current)
	require.True(t, buf.Editing())
	buf.Status = backend.StatusSold
	buf.Price = "1750"

	res := buf.Commit(context.Background(), svc, adminToken)
	require.True(t, res.OK)
	require.Zero(t, svc.CallCount("Upload:image"))

	updated, err := svc.Account(context.Background(), "", "acc-1")
	require.NoError(t, err)
	require.Equal(t, backend.StatusSold, updated.Status)
	require.NotNil(t, updated.SoldAt)
	require.Equal(t, "/uploads/acc-1.jpg", updated.ImageFile)
	require.Equal(t, "1750", updated.Price.String())
}

func TestRemoveMediaClearsFields(t *testing.T) {
	t.Parallel()

	buf := &forms.AccountBuffer{
		ImageFile: "/uploads/a.jpg",
		VideoFile: "/uploads/b.mp4",
		VideoURL:  "https://youtu.be/abc",
	}
	buf.SelectImage(backend.File{Filename: "c.png", Data: []byte("x")})
	buf.RemoveImage()
	buf.RemoveVideo()

	require.Empty(t, buf.ImageFile)
	require.Empty(t, buf.VideoFile)
	require.Empty(t, buf.VideoURL)
	require.True(t, buf.PendingImage.Empty())
}

func TestSettingsCommitSendsToggles(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	settings, err := svc.Settings(context.Background())
	require.NoError(t, err)

	buf := forms.SettingsFrom(*settings)
	require.True(t, buf.EnableIBANPayment)
	require.True(t, buf.EnableCardPayment)

	buf.EnableCardPayment = false
	buf.ShopierAPIKey = "key"
	res := buf.Commit(context.Background(), svc, adminToken)
	require.True(t, res.OK)

	saved, err := svc.Settings(context.Background())
	require.NoError(t, err)
	require.NotNil(t, saved.EnableCardPayment)
	require.False(t, *saved.EnableCardPayment)
	require.Equal(t, "key", saved.ShopierAPIKey)
	require.False(t, buf.EnableCardPayment)
}

func TestSettingsCommitRequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	buf := forms.SettingsFrom(backend.Settings{})
	res := buf.Commit(context.Background(), svc, "user-token")
	require.False(t, res.OK)
	require.ErrorIs(t, res.Err, backend.ErrForbidden)
}

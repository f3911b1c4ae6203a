package forms

import (
	"context"
	"fmt"
	"strings"

	"hesapvitrini.com/vitrine/internal/backend"
	"hesapvitrini.com/vitrine/internal/payment"
)

// Confirmation prompts shown before destructive actions.
const (
	ConfirmDeleteCategory = "Bu kategoriyi ve tüm hesaplarını silmek istediğinizden emin misiniz?"
	ConfirmDeleteAccount  = "Bu hesabı silmek istediğinizden emin misiniz?"
)

// Stage names the step a commit reached.
type Stage string

const (
	StageValidate    Stage = "validate"
	StageUploadVideo Stage = "upload_video"
	StageUploadImage Stage = "upload_image"
	StageWrite       Stage = "write"
	StageDone        Stage = "done"
)

// Result reports how a commit ended. When OK is false, Stage is the step that
// failed and nothing after it was attempted.
type Result struct {
	OK    bool
	Stage Stage
	Err   error
}

func failed(stage Stage, err error) Result {
	return Result{Stage: stage, Err: err}
}

func done() Result {
	return Result{OK: true, Stage: StageDone}
}

// Uploader stores a media file and returns its server path.
type Uploader interface {
	Upload(ctx context.Context, token string, kind backend.UploadKind, file backend.File) (*backend.UploadResult, error)
}

// CategoryStore creates categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, token string, input backend.CategoryInput) (*backend.Category, error)
}

// AccountStore uploads media and writes catalog items.
type AccountStore interface {
	Uploader
	CreateAccount(ctx context.Context, token string, input backend.AccountInput) (*backend.Account, error)
	UpdateAccount(ctx context.Context, token, id string, input backend.AccountUpdate) (*backend.Account, error)
}

// SettingsStore writes the settings singleton.
type SettingsStore interface {
	UpdateSettings(ctx context.Context, token string, input backend.SettingsUpdate) (*backend.Settings, error)
}

// CategoryBuffer is the new-category form.
type CategoryBuffer struct {
	Name        string
	Description string
}

type categoryRules struct {
	Name string `form:"notblank"`
}

// Validate checks the buffer without touching the network.
func (b *CategoryBuffer) Validate() error {
	return check(categoryRules{Name: b.Name}, map[string]string{"Name": MsgCategoryNameRequired})
}

// Commit creates the category and clears the buffer on success.
func (b *CategoryBuffer) Commit(ctx context.Context, store CategoryStore, token string) Result {
	if err := b.Validate(); err != nil {
		return failed(StageValidate, err)
	}
	input := backend.CategoryInput{
		Name:        strings.TrimSpace(b.Name),
		Description: strings.TrimSpace(b.Description),
	}
	if _, err := store.CreateCategory(ctx, token, input); err != nil {
		return failed(StageWrite, fmt.Errorf("forms: create category: %w", err))
	}
	*b = CategoryBuffer{}
	return done()
}

// AccountBuffer is the create or edit form of a catalog item. ImageFile and
// VideoFile hold already stored paths; PendingImage and PendingVideo hold
// selections not uploaded yet.
type AccountBuffer struct {
	ID          string
	CategoryID  string
	Name        string
	Price       string
	Description string
	Details     string
	VideoURL    string
	ImageFile   string
	VideoFile   string
	Status      backend.Status

	PendingImage backend.File
	PendingVideo backend.File
}

// EditBuffer loads an existing item for editing.
func EditBuffer(a backend.Account) *AccountBuffer {
	return &AccountBuffer{
		ID:          a.ID,
		CategoryID:  a.CategoryID,
		Name:        a.Name,
		Price:       a.Price.String(),
		Description: a.Description,
		Details:     a.Details,
		VideoURL:    a.VideoURL,
		ImageFile:   a.ImageFile,
		VideoFile:   a.VideoFile,
		Status:      a.Status,
	}
}

// Editing reports whether the buffer targets an existing item.
func (b *AccountBuffer) Editing() bool {
	return b.ID != ""
}

// SelectImage holds f for upload on commit.
func (b *AccountBuffer) SelectImage(f backend.File) {
	b.PendingImage = f
}

// SelectVideo holds f for upload on commit.
func (b *AccountBuffer) SelectVideo(f backend.File) {
	b.PendingVideo = f
}

// RemoveImage drops both the pending selection and the stored path. The stored
// file itself is not deleted.
func (b *AccountBuffer) RemoveImage() {
	b.PendingImage = backend.File{}
	b.ImageFile = ""
}

// RemoveVideo drops the pending selection, the stored path and the external
// link.
func (b *AccountBuffer) RemoveVideo() {
	b.PendingVideo = backend.File{}
	b.VideoFile = ""
	b.VideoURL = ""
}

type accountCreateRules struct {
	CategoryID string `form:"notblank"`
	Name       string `form:"notblank"`
	Price      string `form:"price"`
}

type accountEditRules struct {
	Name  string `form:"notblank"`
	Price string `form:"price"`
}

var accountMessages = map[string]string{
	"CategoryID": MsgCategoryRequired,
	"Name":       MsgAccountNameRequired,
	"Price":      MsgPriceInvalid,
}

// Validate checks the buffer without touching the network. The category is
// only required on create; it cannot change afterwards.
func (b *AccountBuffer) Validate() error {
	if b.Editing() {
		return check(accountEditRules{Name: b.Name, Price: b.Price}, accountMessages)
	}
	return check(accountCreateRules{CategoryID: b.CategoryID, Name: b.Name, Price: b.Price}, accountMessages)
}

// Commit validates, uploads the pending video and then the pending image, and
// writes the item with the returned paths. Any failure leaves the buffer as it
// was; success clears it.
func (b *AccountBuffer) Commit(ctx context.Context, store AccountStore, token string) Result {
	if err := b.Validate(); err != nil {
		return failed(StageValidate, err)
	}
	price, err := backend.ParsePrice(b.Price)
	if err != nil {
		return failed(StageValidate, &ValidationError{Message: MsgPriceInvalid, FieldErrors: map[string]string{"Price": MsgPriceInvalid}})
	}

	videoFile, imageFile := b.VideoFile, b.ImageFile
	if !b.PendingVideo.Empty() {
		res, err := store.Upload(ctx, token, backend.UploadVideo, b.PendingVideo)
		if err != nil {
			return failed(StageUploadVideo, fmt.Errorf("forms: upload video: %w", err))
		}
		videoFile = res.URL
	}
	if !b.PendingImage.Empty() {
		res, err := store.Upload(ctx, token, backend.UploadImage, b.PendingImage)
		if err != nil {
			return failed(StageUploadImage, fmt.Errorf("forms: upload image: %w", err))
		}
		imageFile = res.URL
	}

	name := strings.TrimSpace(b.Name)
	videoURL := strings.TrimSpace(b.VideoURL)
	if b.Editing() {
		update := backend.AccountUpdate{
			Name:        name,
			Price:       price,
			Description: b.Description,
			Details:     b.Details,
			VideoURL:    videoURL,
			VideoFile:   videoFile,
			ImageFile:   imageFile,
			Status:      b.Status,
		}
		if _, err := store.UpdateAccount(ctx, token, b.ID, update); err != nil {
			return failed(StageWrite, fmt.Errorf("forms: update account: %w", err))
		}
	} else {
		input := backend.AccountInput{
			CategoryID:  b.CategoryID,
			Name:        name,
			Price:       price,
			Description: b.Description,
			Details:     b.Details,
			VideoURL:    videoURL,
			VideoFile:   videoFile,
			ImageFile:   imageFile,
		}
		if _, err := store.CreateAccount(ctx, token, input); err != nil {
			return failed(StageWrite, fmt.Errorf("forms: create account: %w", err))
		}
	}
	*b = AccountBuffer{}
	return done()
}

// SettingsBuffer is the settings form. Both payment toggles are always sent.
type SettingsBuffer struct {
	backend.SettingsUpdate
}

// SettingsFrom loads the current settings; unset toggles read as enabled.
func SettingsFrom(s backend.Settings) *SettingsBuffer {
	return &SettingsBuffer{SettingsUpdate: backend.SettingsUpdate{
		SiteName:            s.SiteName,
		SiteTitle:           s.SiteTitle,
		SiteLogo:            s.SiteLogo,
		SiteFavicon:         s.SiteFavicon,
		WhatsAppNumber:      s.WhatsAppNumber,
		IBAN:                s.IBAN,
		BankName:            s.BankName,
		IBANName:            s.IBANName,
		IBANSurname:         s.IBANSurname,
		ShopierAPIKey:       s.ShopierAPIKey,
		ShopierAPISecret:    s.ShopierAPISecret,
		ShopierWebsiteIndex: s.ShopierWebsiteIndex,
		EnableIBANPayment:   payment.Flag(s.EnableIBANPayment),
		EnableCardPayment:   payment.Flag(s.EnableCardPayment),
	}}
}

// Commit writes every field. On success the buffer reflects what the backend
// stored.
func (b *SettingsBuffer) Commit(ctx context.Context, store SettingsStore, token string) Result {
	saved, err := store.UpdateSettings(ctx, token, b.SettingsUpdate)
	if err != nil {
		return failed(StageWrite, fmt.Errorf("forms: update settings: %w", err))
	}
	if saved != nil {
		*b = *SettingsFrom(*saved)
	}
	return done()
}

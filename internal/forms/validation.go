// Package forms holds the admin edit buffers and commits them against the
// backend: validation first, then sequential media uploads, then the entity
// write.
package forms

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"hesapvitrini.com/vitrine/internal/backend"
)

// Validation messages shown to the admin.
const (
	MsgCategoryNameRequired = "Kategori adı boş olamaz!"
	MsgCategoryRequired     = "Kategori seçmelisiniz!"
	MsgAccountNameRequired  = "Hesap adı boş olamaz!"
	MsgPriceInvalid         = "Geçerli bir fiyat giriniz!"
)

// ValidationError indicates the buffer was rejected before any network call.
type ValidationError struct {
	Message     string
	FieldErrors map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil {
		return "invalid form"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "invalid form"
	}
	return msg
}

// AsValidationError unwraps err into a ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName("form")
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
			p, err := backend.ParsePrice(fl.Field().String())
			return err == nil && p.Positive()
		})
		validate = v
	})
	return validate
}

// check runs the struct rules and reports the first failure, in field
// declaration order, with its message from messages keyed by field name.
func check(input any, messages map[string]string) error {
	err := formValidator().Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{FieldErrors: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg := messages[fe.Field()]
		if msg == "" {
			msg = fe.Error()
		}
		out.FieldErrors[fe.Field()] = msg
		if out.Message == "" {
			out.Message = msg
		}
	}
	return out
}

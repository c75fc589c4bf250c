package comment

import (
	"errors"
	"reflect"
	"strings"

	"benchshare/internal/apperr"

	"github.com/go-playground/validator/v10"
)

// Input is the comment schema a visitor submits.
type Input struct {
	Author      string `form:"author" validate:"required,max=100"`
	AuthorEmail string `form:"authorEmail" validate:"omitempty,email,max=255"`
	AuthorURL   string `form:"authorURL" validate:"omitempty,http_url,max=255"`
	Content     string `form:"content" validate:"required,max=8192"`
}

// messages maps a form field to its user-facing message. Fields that fail
// validation without an entry here get no message.
var messages = map[string]string{
	"author":      "Please enter your name (at most 100 characters).",
	"authorEmail": "Please enter a valid email address.",
	"authorURL":   "Please enter a valid http(s) URL.",
	"content":     "Please enter a comment (at most 8192 characters).",
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
}

// InputFromForm reads the schema fields out of raw form values.
func InputFromForm(raw map[string]string) Input {
	return Input{
		Author:      strings.TrimSpace(raw["author"]),
		AuthorEmail: strings.TrimSpace(raw["authorEmail"]),
		AuthorURL:   strings.TrimSpace(raw["authorURL"]),
		Content:     strings.TrimSpace(raw["content"]),
	}
}

// Validate checks every field and reports all failures at once.
func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if msg, ok := messages[fe.Field()]; ok {
			fields[fe.Field()] = msg
		}
	}
	return &apperr.ValidationError{Fields: fields}
}

package page

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"benchshare/internal/apperr"
	"benchshare/internal/models"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// reservedSlugs collide with fixed routes.
var reservedSlugs = map[string]bool{"login": true, "logout": true, "register": true, "static": true, "metrics": true, "_preview": true}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return slugPattern.MatchString(s) && !reservedSlugs[s]
	})
}

// Input is the form used to create a test page or a new revision of one.
type Input struct {
	Title     string `form:"title" validate:"required,max=255"`
	Slug      string `form:"slug" validate:"required,max=100,slug"`
	Info      string `form:"info" validate:"max=16384"`
	InitHTML  string `form:"initHTML" validate:"max=65536"`
	Setup     string `form:"setup" validate:"max=65536"`
	Teardown  string `form:"teardown" validate:"max=65536"`
	TestTitle string `form:"testTitle" validate:"required,max=255"`
	TestCode  string `form:"testCode" validate:"required,max=65536"`
	Published bool   `form:"published"`
}

var inputMessages = map[string]string{
	"title":     "Please enter a title.",
	"slug":      "Please enter a slug of lowercase letters, digits and dashes.",
	"info":      "The description is too long.",
	"initHTML":  "The preparation HTML is too long.",
	"setup":     "The setup code is too long.",
	"teardown":  "The teardown code is too long.",
	"testTitle": "Please name the test.",
	"testCode":  "Please enter the code to test.",
}

// InputFromForm reads an Input from raw form values.
func InputFromForm(raw map[string]string) Input {
	return Input{
		Title:     strings.TrimSpace(raw["title"]),
		Slug:      strings.ToLower(strings.TrimSpace(raw["slug"])),
		Info:      raw["info"],
		InitHTML:  raw["initHTML"],
		Setup:     raw["setup"],
		Teardown:  raw["teardown"],
		TestTitle: strings.TrimSpace(raw["testTitle"]),
		TestCode:  raw["testCode"],
		Published: raw["published"] != "",
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
		if msg, ok := inputMessages[fe.Field()]; ok {
			fields[fe.Field()] = msg
		}
	}
	return &apperr.ValidationError{Fields: fields}
}

// Page converts the input to a page owned by ownerID.
func (in Input) Page(ownerID int64) models.Page {
	return models.Page{
		Slug:      in.Slug,
		Title:     in.Title,
		Info:      in.Info,
		InitHTML:  in.InitHTML,
		Setup:     []string{in.Setup},
		Teardown:  []string{in.Teardown},
		Tests:     []models.TestCase{{Title: in.TestTitle, Code: in.TestCode}},
		Published: in.Published,
		OwnerID:   ownerID,
	}
}

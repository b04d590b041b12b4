package core

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// PickerDateLayout is the layout of dates coming from date-picker inputs.
const PickerDateLayout = "2006-01-02"

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "this field is required"

	statusTag  = "attendance_status"
	statusText = "status must be one of Hadir, Izin, Sakit or Alpha"

	pickerDateTag  = "picker_date"
	pickerDateText = "date must be formatted as yyyy-mm-dd"

	nisnTag   = "nisn"
	nisnText  = "NISN must contain digits only"
	nisnRegex = regexp.MustCompile(`^[0-9]+$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"

	attendanceLabels = map[string]struct{}{"Hadir": {}, "Izin": {}, "Sakit": {}, "Alpha": {}}
)

// NewValidator returns a validator and its english translator, with the custom validators registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)
	return validate, translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(statusTag, statusValidation)
	RegisterCustomTranslation(validate, translator, statusTag, statusText)

	_ = validate.RegisterValidation(pickerDateTag, pickerDateValidation)
	RegisterCustomTranslation(validate, translator, pickerDateTag, pickerDateText)

	_ = validate.RegisterValidation(nisnTag, nisnValidation)
	RegisterCustomTranslation(validate, translator, nisnTag, nisnText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// notBlankValidation rejects strings made of whitespace only.
func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func statusValidation(fl validator.FieldLevel) bool {
	_, ok := attendanceLabels[strings.TrimSpace(fl.Field().String())]
	return ok
}

func pickerDateValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(PickerDateLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func nisnValidation(fl validator.FieldLevel) bool {
	return nisnRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

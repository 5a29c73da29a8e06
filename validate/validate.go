package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

var translator ut.Translator

func init() {

	validate = validator.New()

	// Report json names so messages match what the client sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Money fields are compared as numbers by gte/lte/gt.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		switch d := v.Interface().(type) {
		case decimal.Decimal:
			f, _ := d.Float64()
			return f
		case decimal.NullDecimal:
			if !d.Valid {
				return nil
			}
			f, _ := d.Decimal.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})

	// cents rejects amounts a NUMERIC(12,2) column would round.
	validate.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Float64 {
			return false
		}
		return decimal.NewFromFloat(fl.Field().Float()).Exponent() >= -2
	})

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTranslation("cents", translator, func(ut ut.Translator) error {
		return ut.Add("cents", "{0} must have at most two decimal places", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("cents", fe.Field())
		return t
	})
}

func Check(val any) error {
	if err := validate.Struct(val); err != nil {

		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		if len(verrors) < 1 {
			return nil
		}

		return errors.New(verrors[0].Translate(translator))
	}

	return nil
}

func GenerateID() string {
	return uuid.NewString()
}

func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("ID is not in its proper form")
	}
	return nil
}

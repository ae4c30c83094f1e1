// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"database/sql/driver"
	"reflect"
	"regexp"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"

	"service-crm/pkg/utils"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterCustomValidations регистрирует кастомные правила и типы null.* в валидаторе.
func RegisterCustomValidations(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(nullValue, null.String{}, null.Int64{}, null.Uint64{}, null.Bool{}, null.Time{})

	if err := v.RegisterValidation("ru_phone", isPhoneNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("email", isGoodEmailFormat); err != nil {
		return err
	}
	return nil
}

// nullValue разворачивает null.* в значение; невалидное значение считается пустым.
func nullValue(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(driver.Valuer); ok {
		val, err := valuer.Value()
		if err == nil {
			return val
		}
	}
	return nil
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// isPhoneNumber принимает российские номера в любом из распознаваемых форматов
// и международные номера с кодом страны.
func isPhoneNumber(fl validator.FieldLevel) bool {
	_, err := utils.NormalizePhone(fl.Field().String())
	return err == nil
}

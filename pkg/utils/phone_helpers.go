package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	apperrors "service-crm/pkg/errors"
)

const defaultPhoneRegion = "RU"

var (
	nonDigitRegexp = regexp.MustCompile(`\D`)
	spacesRegexp   = regexp.MustCompile(`\s+`)

	// +79991234567, 89991234567, 8 (999) 123-45-67, +7 999 123 45 67
	nationalPhoneRegexp = regexp.MustCompile(`^(\+7|8)[\s\-]?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}$`)
	// Прочие международные номера: только с кодом страны.
	internationalPhoneRegexp = regexp.MustCompile(`^\+[1-9][\d\s\-()]{6,20}$`)
)

// NormalizePhone приводит номер к E.164 (+79991234567).
// Номера, не подходящие ни под российский, ни под международный формат, отклоняются.
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: пустой номер", apperrors.ErrInvalidPhone)
	}

	if nationalPhoneRegexp.MatchString(trimmed) {
		digits := nonDigitRegexp.ReplaceAllString(trimmed, "")
		if strings.HasPrefix(digits, "8") {
			digits = "7" + digits[1:]
		}
		number, err := phonenumbers.Parse("+"+digits, defaultPhoneRegion)
		if err != nil {
			return "", fmt.Errorf("%w: %s", apperrors.ErrInvalidPhone, raw)
		}
		return phonenumbers.Format(number, phonenumbers.E164), nil
	}

	if internationalPhoneRegexp.MatchString(trimmed) {
		number, err := phonenumbers.Parse(trimmed, defaultPhoneRegion)
		if err != nil || !phonenumbers.IsValidNumber(number) {
			return "", fmt.Errorf("%w: %s", apperrors.ErrInvalidPhone, raw)
		}
		return phonenumbers.Format(number, phonenumbers.E164), nil
	}

	return "", fmt.Errorf("%w: %s", apperrors.ErrInvalidPhone, raw)
}

// NormalizeClientName убирает лишние пробелы. Регистр не меняется: сравнение точное.
func NormalizeClientName(name string) string {
	return spacesRegexp.ReplaceAllString(strings.TrimSpace(name), " ")
}

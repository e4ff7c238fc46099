package validation

import (
	"fmt"
	"regexp"
)

// ResourcePattern определяет допустимый формат имени ресурса.
// Только строчные латинские буквы и нижнее подчеркивание, 1-64 символа.
// Совпадает с именами таблиц бэкенда (calls, leads, system_messages...).
var ResourcePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// FilterKeyPattern определяет допустимый формат ключа фильтра
// (имя колонки ресурса)
var FilterKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// ValidateResource проверяет, что имя ресурса соответствует требованиям
func ValidateResource(resource string) error {
	if resource == "" {
		return fmt.Errorf("resource cannot be empty")
	}
	if !ResourcePattern.MatchString(resource) {
		return fmt.Errorf("resource must match %s", ResourcePattern)
	}
	return nil
}

// ValidateFilters проверяет ключи фильтров. Значения не ограничиваются:
// бэкенд сравнивает их как параметры, а не как SQL.
func ValidateFilters(filters map[string]string) error {
	for key := range filters {
		if !FilterKeyPattern.MatchString(key) {
			return fmt.Errorf("filter key %q must match %s", key, FilterKeyPattern)
		}
	}
	return nil
}

package fetch

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Fingerprint канонически идентифицирует логический запрос чтения:
// ресурс + страница + размер страницы + фильтры + tenant scope.
// Ключи фильтров сортируются, поэтому результат стабилен относительно
// порядка их перечисления. Ключи и значения экранируются: значение
// со спецсимволами ('&', '=') не может склеиться с соседней парой и
// дать тот же ключ, что другой набор фильтров.
// Используется как ключ кэша и дедупликации.
//
// Формат: "<resource>|<scope>|p<page>|s<pageSize>|k1=v1&k2=v2"
func Fingerprint(resource, scope string, page, pageSize int, filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(filters[k]))
	}

	return fmt.Sprintf("%s|%s|p%d|s%d|%s", resource, scope, page, pageSize, sb.String())
}

// ResourcePrefix возвращает префикс всех фингерпринтов ресурса в
// данном scope — для сброса кэша после мутаций.
func ResourcePrefix(resource, scope string) string {
	return fmt.Sprintf("%s|%s|", resource, scope)
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateResource(t *testing.T) {
	valid := []string{"calls", "leads", "system_messages", "billing_summaries", "a"}
	for _, r := range valid {
		assert.NoError(t, ValidateResource(r), r)
	}

	invalid := []string{"", "Calls", "1calls", "calls;drop", "calls table", "_calls"}
	for _, r := range invalid {
		assert.Error(t, ValidateResource(r), r)
	}
}

func TestValidateFilters(t *testing.T) {
	assert.NoError(t, ValidateFilters(nil))
	assert.NoError(t, ValidateFilters(map[string]string{"tenant_id": "t1", "status": "completed"}))

	// значение произвольное, ключ — нет
	assert.NoError(t, ValidateFilters(map[string]string{"status": "a;b c"}))
	assert.Error(t, ValidateFilters(map[string]string{"bad key": "x"}))
	assert.Error(t, ValidateFilters(map[string]string{"Status": "x"}))
}

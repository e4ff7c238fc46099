package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_StableUnderFilterOrder(t *testing.T) {
	a := Fingerprint("calls", "t1", 2, 10, map[string]string{"status": "completed", "agent_id": "a1"})
	b := Fingerprint("calls", "t1", 2, 10, map[string]string{"agent_id": "a1", "status": "completed"})

	assert.Equal(t, a, b)
}

func TestFingerprint_DistinguishesParameters(t *testing.T) {
	base := Fingerprint("calls", "t1", 1, 10, nil)

	assert.NotEqual(t, base, Fingerprint("leads", "t1", 1, 10, nil))
	assert.NotEqual(t, base, Fingerprint("calls", "t2", 1, 10, nil))
	assert.NotEqual(t, base, Fingerprint("calls", "t1", 2, 10, nil))
	assert.NotEqual(t, base, Fingerprint("calls", "t1", 1, 20, nil))
	assert.NotEqual(t, base, Fingerprint("calls", "t1", 1, 10, map[string]string{"status": "missed"}))
}

func TestFingerprint_EscapedValuesDoNotCollide(t *testing.T) {
	// значение со спецсимволами не склеивается в чужой набор фильтров
	smuggled := Fingerprint("calls", "", 1, 10, map[string]string{"a": "1&b=2"})
	split := Fingerprint("calls", "", 1, 10, map[string]string{"a": "1", "b": "2"})

	assert.NotEqual(t, smuggled, split)
}

func TestFingerprint_HasResourcePrefix(t *testing.T) {
	fp := Fingerprint("calls", "t1", 3, 25, map[string]string{"status": "missed"})
	prefix := ResourcePrefix("calls", "t1")

	assert.Contains(t, fp, prefix)
	assert.Equal(t, 0, indexOf(fp, prefix))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestNearestPage(t *testing.T) {
	tests := []struct {
		name       string
		requested  int
		totalCount int
		pageSize   int
		want       int
	}{
		{"in range", 2, 23, 10, 2},
		{"beyond end clamps to last", 4, 23, 10, 3},
		{"after delete shrinks to one page", 3, 5, 10, 1},
		{"zero page clamps to first", 0, 23, 10, 1},
		{"negative page clamps to first", -2, 23, 10, 1},
		{"empty result set", 5, 0, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NearestPage(tt.requested, tt.totalCount, tt.pageSize))
		})
	}
}

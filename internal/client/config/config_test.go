package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate_RejectsZeroTTL(t *testing.T) {
	o := Default()
	o.TTL = 0
	assert.Error(t, o.Validate())
}

func TestValidate_RejectsNegativeCacheSize(t *testing.T) {
	o := Default()
	o.MaxCacheSize = -1
	assert.Error(t, o.Validate())
}

func TestValidate_MinIntervalAboveRefreshInterval(t *testing.T) {
	o := Default()
	o.MinInterval = 2 * time.Minute
	o.RefreshInterval = time.Minute

	err := o.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MinInterval")
}

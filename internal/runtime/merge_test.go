package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/stitch/internal/runtime"
	"github.com/aretw0/stitch/pkg/domain"
)

func TestMerge(t *testing.T) {
	stored := domain.Values{"full_name": "Ada", "income": 1500, "status": "employed"}
	submitted := domain.Values{"status": "unemployed"}

	merged := runtime.Merge(stored, submitted)

	assert.Equal(t, domain.Values{"full_name": "Ada", "income": 1500, "status": "unemployed"}, merged)
	assert.Equal(t, domain.Values{"full_name": "Ada", "income": 1500, "status": "employed"}, stored, "stored must not be mutated")
	assert.Equal(t, domain.Values{"status": "unemployed"}, submitted, "submitted must not be mutated")
}

func TestMerge_NilInputs(t *testing.T) {
	assert.Equal(t, domain.Values{}, runtime.Merge(nil, nil))
	assert.Equal(t, domain.Values{"a": 1}, runtime.Merge(nil, domain.Values{"a": 1}))
	assert.Equal(t, domain.Values{"a": 1}, runtime.Merge(domain.Values{"a": 1}, nil))
}

func TestMerge_SubmittedNilOverwrites(t *testing.T) {
	merged := runtime.Merge(domain.Values{"nickname": "ada"}, domain.Values{"nickname": nil})
	v, ok := merged["nickname"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

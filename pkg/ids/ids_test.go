package ids

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReference(t *testing.T) {
	ref := NewReference(TransferPrefix)

	assert.Regexp(t, regexp.MustCompile(`^TRF-[0-9A-F]{32}$`), ref)
	assert.NotEqual(t, ref, NewReference(TransferPrefix))
}

func TestNewAccountNumber(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		n := NewAccountNumber()
		assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{15}$`), n)
		seen[n] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestNew(t *testing.T) {
	assert.Len(t, New(), 36)
}

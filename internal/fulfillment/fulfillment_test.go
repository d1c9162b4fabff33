package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateToken_Format(t *testing.T) {
	token := generateToken("order-1", "item-1")
	assert.Contains(t, token, "ALTIS-order-1-item-1-")
	assert.Len(t, token, len("ALTIS-order-1-item-1-")+8)
}

func TestGenerateToken_UniquePerCall(t *testing.T) {
	a := generateToken("order-1", "item-1")
	b := generateToken("order-1", "item-1")
	assert.NotEqual(t, a, b)
}

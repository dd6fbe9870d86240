package ledger_test

import (
	"testing"

	"github.com/ariefcatur/go-campus-grub.git/internal/ledger"
	"github.com/stretchr/testify/assert"
)

func TestOrderTransitions(t *testing.T) {
	assert.True(t, ledger.CanTransition(ledger.OrderPlaced, ledger.OrderPickedUp))
	assert.False(t, ledger.CanTransition(ledger.OrderPickedUp, ledger.OrderPlaced))
	assert.False(t, ledger.CanTransition(ledger.OrderPickedUp, ledger.OrderPickedUp))
	assert.False(t, ledger.CanTransition(ledger.OrderCancelled, ledger.OrderPickedUp))
	assert.False(t, ledger.CanTransition(ledger.OrderPlaced, ledger.OrderCancelled))
}

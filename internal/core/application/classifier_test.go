package application_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/application"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	"github.com/stretchr/testify/require"
)

func TestClassifyMessage(t *testing.T) {
	t.Parallel()

	fixtures := []struct {
		msg      string
		expected application.Category
	}{
		{"MoveAbort(..., function: 104) in command 2", application.CategoryInsufficientDeposit},
		{"abort code err_insufficient_deposit", application.CategoryInsufficientDeposit},
		{"InsufficientGas", application.CategoryInsufficientGas},
		{"not enough gas to pay", application.CategoryInsufficientGas},
		{"User rejected the request", application.CategoryUserRejected},
		{"permission denied", application.CategoryUserRejected},
		{"request cancelled by user", application.CategoryUserRejected},
		{"InsufficientCoinBalance", application.CategoryInsufficientBalance},
		{"low balance", application.CategoryInsufficientBalance},
		{"MoveAbort in command 0", application.CategoryContractAborted},
		{"network unreachable", application.CategoryUnknown},
		{"", application.CategoryUnknown},
		// Earlier rules win.
		{"rejected: gas budget too low", application.CategoryInsufficientGas},
		{"MoveAbort: Insufficient balance", application.CategoryInsufficientBalance},
		{"Insufficient funds, user cancelled", application.CategoryUserRejected},
	}

	for _, f := range fixtures {
		c := application.ClassifyMessage(f.msg)
		require.Equal(t, f.expected, c.Category, f.msg)
		require.NotEmpty(t, c.Friendly)
		require.NotEmpty(t, c.Details)
		require.NotEmpty(t, c.Raw)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	// The tag wins over a message that would match an earlier rule.
	tagged := ports.NewFailure(ports.KindAborted, "gas station aborted")
	c := application.Classify(fmt.Errorf("submit: %w", tagged))
	require.Equal(t, application.CategoryContractAborted, c.Category)
	require.Equal(t, "submit: gas station aborted", c.Raw)

	untagged := ports.NewFailure(ports.KindUnknown, "user rejected")
	require.Equal(t, application.CategoryUserRejected, application.Classify(untagged).Category)

	require.Equal(
		t, application.CategoryInsufficientBalance,
		application.Classify(errors.New("Insufficient")).Category,
	)
	require.Equal(t, application.CategoryUnknown, application.Classify(nil).Category)
	require.Equal(t, "unknown error", application.Classify(nil).Raw)
}

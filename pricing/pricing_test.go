package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/design"
)

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "期望 %s，实际 %s", want, got)
}

func TestCardPrice(t *testing.T) {
	doc := design.New(design.CardPaper, design.SizeStandard)
	requireAmount(t, "67.10", Card(doc))

	doc.Quantity = 0
	requireAmount(t, "67.10", Card(doc))

	metal := design.New(design.CardMetal, design.SizeLarge)
	metal.Quantity = 100
	metal.PremiumThickness = true
	metal.ExtraDesigns = 2
	requireAmount(t, "208", Card(metal))
}

func TestPrintPrice(t *testing.T) {
	requireAmount(t, "49.99", Print(design.Print16x20))
	requireAmount(t, "59.99", Print(design.Print18x24))
	requireAmount(t, "49.99", Print("poster"))
}

func TestCheckoutTotals(t *testing.T) {
	totals := Checkout(decimal.RequireFromString("67.10"), false)
	requireAmount(t, "5.99", totals.Shipping)
	requireAmount(t, "5.368", totals.Tax)
	requireAmount(t, "78.458", totals.Total)
	require.Equal(t, int64(7846), totals.AmountCents)

	free := Checkout(decimal.RequireFromString("67.10"), true)
	require.True(t, free.Shipping.IsZero())
	require.Equal(t, int64(7247), free.AmountCents)
}

func TestCentsRoundsHalfAwayFromZero(t *testing.T) {
	require.Equal(t, int64(13), Cents(decimal.RequireFromString("0.125")))
	require.Equal(t, int64(-13), Cents(decimal.RequireFromString("-0.125")))
	require.Equal(t, int64(12), Cents(decimal.RequireFromString("0.124")))
	requireAmount(t, "78.46", FromCents(7846))
}

func TestValidateAmount(t *testing.T) {
	require.True(t, apperrors.Is(ValidateAmount(49), apperrors.CodeValidation))
	require.NoError(t, ValidateAmount(50))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "$5.99", Format(StandardShipping))
	require.Equal(t, "$7.00", Format(LargeSurcharge))
	require.Equal(t, "-$1.50", Format(decimal.RequireFromString("-1.5")))
}

package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID     uuid.UUID       `validate:"uuid_required"`
	CEP    string          `validate:"omitempty,cep"`
	Price  decimal.Decimal `validate:"gte=0"`
	Colour string          `validate:"omitempty,hexcolor"`
}

func TestCheck_Valid(t *testing.T) {
	s := sample{ID: uuid.New(), CEP: "01310-100", Price: decimal.RequireFromString("9.90"), Colour: "#800000"}
	assert.NoError(t, Check(&s))
}

func TestCheck_Failures(t *testing.T) {
	base := func() sample {
		return sample{ID: uuid.New(), Price: decimal.NewFromInt(1)}
	}

	s := base()
	s.ID = uuid.Nil
	err := Check(&s)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "uuid_required")

	s = base()
	s.CEP = "1234-567"
	assert.ErrorIs(t, Check(&s), ErrInvalid)

	s = base()
	s.Price = decimal.NewFromInt(-1)
	err = Check(&s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gte")

	s = base()
	s.Colour = "red"
	assert.Error(t, Check(&s))
}

func TestValidateStruct_ReportsEveryField(t *testing.T) {
	s := sample{Price: decimal.NewFromInt(-5)}
	errs := ValidateStruct(&s)
	assert.Len(t, errs, 2)
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "01310100", DigitsOnly("01310-100"))
	assert.Equal(t, "12345678900", DigitsOnly("123.456.789-00"))
	assert.Equal(t, "", DigitsOnly("abc"))
}

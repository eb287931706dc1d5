package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type probe struct {
	Name  string  `validate:"required"`
	Count int     `validate:"gt=0"`
	Price float64 `validate:"gt=0"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(probe{Name: "ok", Count: 1, Price: 9.99}))

	errs := Validate(probe{Count: 0, Price: -1})
	assert.Len(t, errs, 3)
	assert.Equal(t, "Name", errs[0].Field)
}

func TestValidateRatio(t *testing.T) {
	assert.NoError(t, ValidateRatio(0.01))
	assert.NoError(t, ValidateRatio(1))
	assert.Error(t, ValidateRatio(0))
	assert.Error(t, ValidateRatio(1.5))
	assert.Error(t, ValidateRatio(-0.1))
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(5, 1, 50))
	assert.NoError(t, ValidateIntRange(1, 1, 50))
	assert.NoError(t, ValidateIntRange(50, 1, 50))
	assert.Error(t, ValidateIntRange(0, 1, 50))
	assert.Error(t, ValidateIntRange(51, 1, 50))
}

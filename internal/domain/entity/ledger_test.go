package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRevenueRatesValidate(t *testing.T) {
	rates := func(doctor, hospital string) RevenueRates {
		return RevenueRates{
			DoctorRate:   decimal.RequireFromString(doctor),
			HospitalRate: decimal.RequireFromString(hospital),
		}
	}

	assert.NoError(t, rates("0.60", "0.30").Validate())
	assert.NoError(t, rates("0.6125", "0.3875").Validate())
	assert.NoError(t, rates("0.600000", "0.3").Validate())
	assert.NoError(t, rates("0", "0").Validate())

	assert.ErrorIs(t, rates("-0.1", "0.3").Validate(), ErrInvalidRates)
	assert.ErrorIs(t, rates("0.8", "0.3").Validate(), ErrInvalidRates)
	assert.ErrorIs(t, rates("0.61255", "0.3").Validate(), ErrInvalidRates)
	assert.ErrorIs(t, rates("0.6", "0.00001").Validate(), ErrInvalidRates)
}

func TestCompletionPolicyValid(t *testing.T) {
	assert.True(t, CompletionPolicyDoctor.Valid())
	assert.True(t, CompletionPolicyDoctorOrElapsed.Valid())
	assert.False(t, CompletionPolicy("").Valid())
	assert.False(t, CompletionPolicy("admin").Valid())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{
		StatusSubmitted, StatusProcurementApproved, StatusPendingMandate,
		StatusMandated, StatusRejectedByProcurement, StatusRejectedByService,
		StatusRejectedByFinance, StatusProcessed,
	} {
		assert.True(t, s.Valid(), string(s))
	}

	assert.False(t, Status("").Valid())
	assert.False(t, Status("VALIDATED").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusMandated.Terminal())
	assert.True(t, StatusProcessed.Terminal())
	assert.False(t, StatusSubmitted.Terminal())
	assert.False(t, StatusRejectedByProcurement.Terminal())
}

func TestStatusRejection(t *testing.T) {
	assert.True(t, StatusRejectedByProcurement.Rejection())
	assert.True(t, StatusRejectedByService.Rejection())
	assert.True(t, StatusRejectedByFinance.Rejection())
	assert.False(t, StatusSubmitted.Rejection())
	assert.False(t, StatusProcessed.Rejection())
}

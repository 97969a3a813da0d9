package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

func TestObserveWeightUpdate(t *testing.T) {
	okBefore := testutil.ToFloat64(WeightUpdatesTotal.WithLabelValues("metrics-test", StatusOK))
	errBefore := testutil.ToFloat64(WeightUpdatesTotal.WithLabelValues("metrics-test", StatusError))

	ObserveWeightUpdate("metrics-test", nil)
	ObserveWeightUpdate("metrics-test", errors.New("boom"))
	ObserveWeightUpdate("metrics-test", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(WeightUpdatesTotal.WithLabelValues("metrics-test", StatusOK)))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(WeightUpdatesTotal.WithLabelValues("metrics-test", StatusError)))
}

func TestUnits(t *testing.T) {
	assert.Equal(t, 0.0, Units(nil))
	assert.Equal(t, 1.0, Units(fixedpoint.Unit()))
	assert.InDelta(t, 0.25, Units(fixedpoint.MustParse("0.25")), 1e-12)
}

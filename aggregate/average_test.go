package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shardloader/hiveimport/aggregate"
)

func TestAverage_Empty(t *testing.T) {
	var a aggregate.Average
	assert.Equal(t, int64(0), a.Result())
	assert.Equal(t, int64(0), a.Count())
}

func TestAverage_IntegerDivision(t *testing.T) {
	var a aggregate.Average
	a.Add(1)
	a.Add(2)
	// (1+2)/2 = 1 under integer division, not 1.5.
	assert.Equal(t, int64(1), a.Result())
	assert.Equal(t, int64(2), a.Count())
}

func TestAverage_Merge(t *testing.T) {
	var a, b aggregate.Average
	a.Add(10)
	a.Add(20)
	b.Add(30)

	a.Merge(b)
	assert.Equal(t, int64(20), a.Result())
	assert.Equal(t, int64(3), a.Count())
}

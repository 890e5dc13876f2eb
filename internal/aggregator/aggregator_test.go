package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"callcenter-go/internal/types"
)

func TestAggregate(t *testing.T) {
	records := []types.CallRecord{
		{Caller: "neda", CallStatus: types.StatusAnswered, CallResult: types.ResultInterested, CallDuration: 120},
		{Caller: "neda", CallStatus: types.StatusAnswered, CallResult: types.ResultNotInterested, CallDuration: 60},
		{Caller: "omid", CallStatus: types.StatusNoAnswer},
		{Caller: "omid", CallStatus: types.StatusWrongNumber, CallResult: types.ResultNoTime},
	}

	s := Aggregate(records)
	assert.Equal(t, 4, s.TotalCalls)
	assert.Equal(t, map[string]int{"answered": 2, "no_answer": 1, "wrong_number": 1}, s.StatusCounts)
	assert.Equal(t, map[string]int{"interested": 1, "not_interested": 1}, s.ResultCounts, "results only count for answered calls")
	assert.InDelta(t, 0.5, s.AnswerRate, 1e-9)
	assert.InDelta(t, 0.5, s.InterestRate, 1e-9)
	assert.InDelta(t, 90, s.AvgDurationSecs, 1e-9)

	assert.Len(t, s.ByCaller, 2)
	assert.InDelta(t, 1.0, s.ByCaller["neda"].AnswerRate, 1e-9)
	assert.Zero(t, s.ByCaller["omid"].AnswerRate)
	assert.Nil(t, s.ByCaller["omid"].ByCaller)
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	assert.Zero(t, s.TotalCalls)
	assert.Zero(t, s.AnswerRate)
	assert.Empty(t, s.StatusCounts)
	assert.Nil(t, s.ByCaller)
}

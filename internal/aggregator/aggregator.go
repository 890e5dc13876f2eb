package aggregator

import "callcenter-go/internal/types"

// Summary is a local breakdown of call records.
type Summary struct {
	TotalCalls      int                `json:"total_calls"`
	StatusCounts    map[string]int     `json:"status_counts"`
	ResultCounts    map[string]int     `json:"result_counts"`
	AnswerRate      float64            `json:"answer_rate"`
	InterestRate    float64            `json:"interest_rate"`
	AvgDurationSecs float64            `json:"avg_duration_secs"`
	ByCaller        map[string]Summary `json:"by_caller,omitempty"`
}

// Aggregate counts calls by status and result. InterestRate is relative to
// answered calls; AvgDurationSecs only averages calls with a duration.
func Aggregate(records []types.CallRecord) Summary {
	s := summarize(records)
	groups := map[string][]types.CallRecord{}
	for _, r := range records {
		if r.Caller != "" {
			groups[r.Caller] = append(groups[r.Caller], r)
		}
	}
	if len(groups) > 0 {
		s.ByCaller = map[string]Summary{}
		for caller, rs := range groups {
			s.ByCaller[caller] = summarize(rs)
		}
	}
	return s
}

func summarize(records []types.CallRecord) Summary {
	status := map[string]int{}
	result := map[string]int{}
	var durTotal, durN int
	for _, r := range records {
		status[r.CallStatus]++
		if r.CallStatus == types.StatusAnswered && r.CallResult != "" {
			result[r.CallResult]++
		}
		if r.CallDuration > 0 {
			durTotal += r.CallDuration
			durN++
		}
	}
	s := Summary{TotalCalls: len(records), StatusCounts: status, ResultCounts: result}
	if len(records) > 0 {
		s.AnswerRate = float64(status[types.StatusAnswered]) / float64(len(records))
	}
	if answered := status[types.StatusAnswered]; answered > 0 {
		s.InterestRate = float64(result[types.ResultInterested]) / float64(answered)
	}
	if durN > 0 {
		s.AvgDurationSecs = float64(durTotal) / float64(durN)
	}
	return s
}

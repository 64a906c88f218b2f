package metrics

import (
	"sync/atomic"
)

type Metrics struct {
	requestsTotal      int64
	loanCreatesTotal   int64
	loanReturnsTotal   int64
	feedBroadcasts     int64
	feedBroadcastFails int64
	activeFeedClients  int64
}

var global = &Metrics{}

func IncrementRequests() {
	atomic.AddInt64(&global.requestsTotal, 1)
}

func IncrementLoanCreates() {
	atomic.AddInt64(&global.loanCreatesTotal, 1)
}

func IncrementLoanReturns() {
	atomic.AddInt64(&global.loanReturnsTotal, 1)
}

func IncrementFeedBroadcasts() {
	atomic.AddInt64(&global.feedBroadcasts, 1)
}

func IncrementFeedBroadcastFails() {
	atomic.AddInt64(&global.feedBroadcastFails, 1)
}

func SetActiveFeedClients(count int64) {
	atomic.StoreInt64(&global.activeFeedClients, count)
}

func GetRequests() int64 {
	return atomic.LoadInt64(&global.requestsTotal)
}

func GetLoanCreates() int64 {
	return atomic.LoadInt64(&global.loanCreatesTotal)
}

func GetLoanReturns() int64 {
	return atomic.LoadInt64(&global.loanReturnsTotal)
}

func GetFeedBroadcasts() int64 {
	return atomic.LoadInt64(&global.feedBroadcasts)
}

func GetFeedBroadcastFails() int64 {
	return atomic.LoadInt64(&global.feedBroadcastFails)
}

func GetActiveFeedClients() int64 {
	return atomic.LoadInt64(&global.activeFeedClients)
}

func Reset() {
	atomic.StoreInt64(&global.requestsTotal, 0)
	atomic.StoreInt64(&global.loanCreatesTotal, 0)
	atomic.StoreInt64(&global.loanReturnsTotal, 0)
	atomic.StoreInt64(&global.feedBroadcasts, 0)
	atomic.StoreInt64(&global.feedBroadcastFails, 0)
	atomic.StoreInt64(&global.activeFeedClients, 0)
}

package dashboard

import "sync/atomic"

// TxStats accumulates per-send outcomes on the hub. Completion callbacks run
// on transport goroutines, so both counters are atomic, and Report swaps
// them to zero atomically with the read.
type TxStats struct {
	success atomic.Uint32
	failure atomic.Uint32
}

func (st *TxStats) Success() {
	st.success.Add(1)
}

func (st *TxStats) Failure() {
	st.failure.Add(1)
}

// Report returns the counters accumulated since the last report and resets
// them. The rate is success/(success+failure), or 0 when nothing was sent.
func (st *TxStats) Report() (success, failure uint32, rate float64) {
	success = st.success.Swap(0)
	failure = st.failure.Swap(0)
	total := success + failure
	if total == 0 {
		return success, failure, 0
	}
	return success, failure, float64(success) / float64(total)
}

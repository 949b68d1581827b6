package ooo

// BranchPredictorStats holds statistics for the branch predictor.
type BranchPredictorStats struct {
	// Predictions is the number of committed branches.
	Predictions uint64
	// Correct is the number of committed branches that were predicted
	// correctly.
	Correct uint64
	// Mispredictions is the number of committed branches that were
	// mispredicted.
	Mispredictions uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s BranchPredictorStats) MispredictionRate() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Predictions) * 100
}

// BranchPredictor is a single global 2-bit saturating counter shared by
// every branch. States: 0=Strongly Not Taken, 1=Weakly Not Taken,
// 2=Weakly Taken, 3=Strongly Taken.
type BranchPredictor struct {
	cur, next uint8
	stats     BranchPredictorStats
}

// NewBranchPredictor creates a predictor in the strongly not-taken state.
func NewBranchPredictor() *BranchPredictor {
	return &BranchPredictor{}
}

// Predict returns the predicted direction: the counter's top bit.
func (bp *BranchPredictor) Predict() bool {
	return bp.cur>>1 == 1
}

// Counter returns the current counter value.
func (bp *BranchPredictor) Counter() uint8 {
	return bp.cur
}

// Taken moves the counter toward taken, saturating at 3.
func (bp *BranchPredictor) Taken() {
	if bp.next < 3 {
		bp.next++
	}
}

// Untaken moves the counter toward not taken, saturating at 0.
func (bp *BranchPredictor) Untaken() {
	if bp.next > 0 {
		bp.next--
	}
}

// Update trains the counter with a committed branch and returns true if
// the branch was mispredicted. A correct prediction moves the counter
// toward taken and a misprediction moves it toward not taken, whatever
// the branch direction was.
func (bp *BranchPredictor) Update(predicted, taken bool) bool {
	bp.stats.Predictions++

	if predicted != taken {
		bp.stats.Mispredictions++
		bp.Untaken()
		return true
	}

	bp.stats.Correct++
	bp.Taken()
	return false
}

// Stats returns the branch predictor statistics.
func (bp *BranchPredictor) Stats() BranchPredictorStats {
	return bp.stats
}

// Advance implements Sequential.
func (bp *BranchPredictor) Advance() {
	bp.cur = bp.next
}

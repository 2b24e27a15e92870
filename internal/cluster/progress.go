package cluster

// ProgressReporter receives progress updates during a clustering pass.
type ProgressReporter interface {
	// OnProgress is called with the number of spectra processed so far.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// progressStep returns how many spectra to process between reports,
// roughly one report per percent.
func progressStep(total int) int {
	return max(1, total/100)
}

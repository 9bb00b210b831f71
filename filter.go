package edl

// FadingMemory returns the derivative of a first-order fading-memory
// estimate: gain × (measured − current). Integrating it drives the estimate
// exponentially toward the measurement; a zero gain freezes the estimate.
//
// It is used to estimate the lift and drag correction ratios from the ratio
// of the navigated-model aeroforces to the nominal-model aeroforces.
func FadingMemory(current, measured, gain float64) float64 {
	return gain * (measured - current)
}

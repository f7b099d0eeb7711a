package engine

// streamSeed derives the seed for a task's random stream from the trial
// id alone, splitmix64-scrambled so nearby trials land on well-separated
// states. Setting index and schedule position never enter the mix: every
// setting executed under the same trial draws the same synthetic data,
// which is what enables paired comparisons across settings.
func streamSeed(base int64, trial int) int64 {
	z := uint64(base) + uint64(trial)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// licita/pkg/analyzer/semaphore.go

package analyzer

// Semaphore is the three-state summary shown next to a score.
type Semaphore string

const (
	SemaphoreGreen  Semaphore = "green"
	SemaphoreYellow Semaphore = "yellow"
	SemaphoreRed    Semaphore = "red"
)

const (
	GreenThreshold  = 75
	YellowThreshold = 40
)

func SemaphoreFor(score int) Semaphore {
	switch {
	case score >= GreenThreshold:
		return SemaphoreGreen
	case score >= YellowThreshold:
		return SemaphoreYellow
	default:
		return SemaphoreRed
	}
}

// Semaphore returns yellow for a nil report (nothing analysed yet).
func (r *Report) Semaphore() Semaphore {
	if r == nil {
		return SemaphoreYellow
	}
	return SemaphoreFor(r.Score)
}

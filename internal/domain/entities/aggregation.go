package entities

import "time"

// TaskStatus is the lifecycle state of an aggregation
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
)

// AggregationSnapshot is a point-in-time copy of an aggregation's state
type AggregationSnapshot struct {
	Generation     uint64        `json:"generation"`
	Status         TaskStatus    `json:"status"`
	Superseded     bool          `json:"superseded"`
	Chains         []string      `json:"chains"`
	Wallets        []AddressKey  `json:"wallets"`
	Matrix         BalanceMatrix `json:"matrix"`
	CompletedCells int           `json:"completed_cells"`
	TotalCells     int           `json:"total_cells"`
	SubmittedAt    time.Time     `json:"submitted_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// Progress returns the resolved fraction in [0, 1]
func (s AggregationSnapshot) Progress() float64 {
	if s.TotalCells == 0 {
		return 1
	}
	return float64(s.CompletedCells) / float64(s.TotalCells)
}

// IsDone reports whether every cell has resolved
func (s AggregationSnapshot) IsDone() bool {
	return s.Status == TaskDone
}

// MarkerPending is displayed for cells that have not resolved yet
const MarkerPending = "..."

// Display renders every row and column of the snapshot, including cells
// still in flight, using BalanceCell.Display for resolved ones
func (s AggregationSnapshot) Display(collapseFailures bool) map[AddressKey]map[string]string {
	grid := make(map[AddressKey]map[string]string, len(s.Wallets))
	for _, key := range s.Wallets {
		row := make(map[string]string, len(s.Chains))
		for _, chain := range s.Chains {
			if cell, ok := s.Matrix.Get(key, chain); ok {
				row[chain] = cell.Display(collapseFailures)
			} else {
				row[chain] = MarkerPending
			}
		}
		grid[key] = row
	}
	return grid
}

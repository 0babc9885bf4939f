// internal/domain/record/stats.go
package record

import "sort"

// StatusCount is one grouped row: how many records of an agent sit in a status.
type StatusCount struct {
	AgentID    int64  `db:"assigned_agent_id"`
	AgentName  string `db:"agent_name"`
	AgentEmail string `db:"agent_email"`
	Status     Status `db:"status"`
	Count      int64  `db:"count"`
}

type StatusBreakdown struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}

func (b *StatusBreakdown) add(status Status, n int64) {
	switch status {
	case StatusPending:
		b.Pending += n
	case StatusInProgress:
		b.InProgress += n
	case StatusCompleted:
		b.Completed += n
	case StatusFailed:
		b.Failed += n
	}
}

type AgentStats struct {
	AgentID         int64           `json:"agentId"`
	AgentName       string          `json:"agentName"`
	AgentEmail      string          `json:"agentEmail"`
	TotalAssigned   int64           `json:"totalAssigned"`
	StatusBreakdown StatusBreakdown `json:"statusBreakdown"`
}

type Stats struct {
	TotalRecords int64        `json:"totalRecords"`
	ByAgent      []AgentStats `json:"byAgent"`
}

// AggregateStats folds grouped counts into per-agent totals.
// Agents without records never appear in counts and so are omitted.
func AggregateStats(total int64, counts []StatusCount) *Stats {
	byID := make(map[int64]*AgentStats)
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		entry, ok := byID[c.AgentID]
		if !ok {
			entry = &AgentStats{
				AgentID:    c.AgentID,
				AgentName:  c.AgentName,
				AgentEmail: c.AgentEmail,
			}
			byID[c.AgentID] = entry
		}
		entry.TotalAssigned += c.Count
		entry.StatusBreakdown.add(c.Status, c.Count)
	}

	stats := &Stats{TotalRecords: total, ByAgent: make([]AgentStats, 0, len(byID))}
	for _, entry := range byID {
		stats.ByAgent = append(stats.ByAgent, *entry)
	}
	sort.Slice(stats.ByAgent, func(i, j int) bool {
		return stats.ByAgent[i].AgentID < stats.ByAgent[j].AgentID
	})
	return stats
}

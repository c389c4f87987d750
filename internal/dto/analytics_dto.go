package dto

// SummaryBucket is one time bucket of the performance summary. Allotted is
// claimed + unclaimed outcomes actually recorded for the bucket, which
// undercounts true cohort size for ranges the unclaimed backfill has not yet
// covered.
type SummaryBucket struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Allotted  int64  `json:"allotted"`
	Claimed   int64  `json:"claimed"`
	Unclaimed int64  `json:"unclaimed"`
}

// SummaryResponse is the ordered bucket list for one filter period.
type SummaryResponse struct {
	FilterPeriod string          `json:"filter_period"`
	Value        string          `json:"value,omitempty"`
	Buckets      []SummaryBucket `json:"buckets"`
	CacheHit     bool            `json:"cache_hit"`
}

// BreakdownRow is one group of the program breakdown.
type BreakdownRow struct {
	Name      string `json:"name"`
	Claimed   int64  `json:"claimed"`
	Unclaimed int64  `json:"unclaimed"`
	Allotted  int64  `json:"allotted"`
}

// BreakdownResponse groups one resolved period by program or year level.
type BreakdownResponse struct {
	FilterPeriod string         `json:"filter_period"`
	Value        string         `json:"value,omitempty"`
	Program      string         `json:"program,omitempty"`
	GroupBy      string         `json:"group_by"`
	Rows         []BreakdownRow `json:"rows"`
}

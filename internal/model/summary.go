package model

import "time"

// LoadSummary captures metrics from one load of the record store.
type LoadSummary struct {
	LoadID          string
	Source          string
	ServiceRows     int
	MemberRows      int
	EnrollmentRows  int
	ProviderRows    int
	MembersDropped  int
	DurationLoad    time.Duration
	DurationClean   time.Duration
	DurationMetrics time.Duration
}

// Inventory is the basic count surface of the loaded data.
type Inventory struct {
	TotalMembers    int `json:"total_members"`
	TotalRecords    int `json:"total_records"`
	TotalEnrollment int `json:"total_enrollment"`
	TotalProviders  int `json:"total_providers"`
	TotalMSAs       int `json:"total_msas"`
	TotalStates     int `json:"total_states"`
}

// IngestSummary captures metrics from staging source shards into Postgres.
type IngestSummary struct {
	IngestBatchID string
	Fingerprint   string
	AlreadyLoaded bool
	ShardsRead    int
	RowsStaged    map[string]int64
	DurationStage time.Duration
	DurationTotal time.Duration
}

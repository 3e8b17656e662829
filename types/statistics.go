package types

// CardStatistics is the per owner scan/save counter document flushed from redis
type CardStatistics struct {
	BaseDocument `json:",inline"`
	OwnerAddress string `json:"ownerAddress"`
	Scans        int64  `json:"scans"`
	Saves        int64  `json:"saves"`
	Modified     int64  `json:"modified,omitempty"`
}

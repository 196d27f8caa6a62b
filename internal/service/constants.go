package service

const (
	// Sync state keys
	SyncCursorPrefix = "last_sync:" // + metric, time of the newest stored reading
	LastSyncKey      = "last_sync_completed"

	// Pagination limits
	RecentReadingsLimit = 10
	ReadingsPageLimit   = 200

	// Chart labels
	ChartLabelLayout = "Jan 02"

	// Point colors for metrics with a normal range
	ColorInRange    = "#10B981"
	ColorOutOfRange = "#EF4444"

	// Default chart point count when the config leaves it unset
	DefaultChartPoints = 14
)

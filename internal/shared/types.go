package shared

// Asynq task types và queue names cho maintenance worker
const (
	TypeCleanupStaleConversions = "conversion:cleanup_stale"

	QueueMaintenance = "low"
)

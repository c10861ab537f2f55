package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Run() RunRepository
	AgentLog() AgentLogRepository
	Citation() CitationRepository
	FollowUp() FollowUpRepository

	Close() error
}

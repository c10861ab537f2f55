package memory

import (
	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
)

// Memory is an in-memory repository used for tests and development mode
type Memory struct {
	run      *runRepository
	agentLog *agentLogRepository
	citation *citationRepository
	followUp *followUpRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	citationRepo := newCitationRepository()

	return &Memory{
		run:      newRunRepository(citationRepo),
		agentLog: newAgentLogRepository(),
		citation: citationRepo,
		followUp: newFollowUpRepository(),
	}
}

func (m *Memory) Run() interfaces.RunRepository {
	return m.run
}

func (m *Memory) AgentLog() interfaces.AgentLogRepository {
	return m.agentLog
}

func (m *Memory) Citation() interfaces.CitationRepository {
	return m.citation
}

func (m *Memory) FollowUp() interfaces.FollowUpRepository {
	return m.followUp
}

func (m *Memory) Close() error {
	return nil
}

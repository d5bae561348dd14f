package services

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/mailstock/pkg/eventbus"
)

// ActivityLogger mirrors bus events into the application log so imports and
// propagation runs leave an audit trail.
type ActivityLogger struct {
	log *logrus.Logger
}

func NewActivityLogger(log *logrus.Logger) *ActivityLogger {
	return &ActivityLogger{log: log}
}

// Register subscribes the logger to every accounts event.
func (l *ActivityLogger) Register(bus eventbus.EventBus) {
	bus.Subscribe(l.onRecordsImported)
	bus.Subscribe(l.onTeamAssigned)
	bus.Subscribe(l.onLeadsDistributed)
	bus.Subscribe(l.onClosedUpserted)
}

func (l *ActivityLogger) onRecordsImported(e *RecordsImportedEvent) {
	l.log.WithFields(logrus.Fields{
		"files":      e.Files,
		"imported":   e.Imported,
		"duplicates": len(e.Duplicates),
	}).Info("records imported")
}

func (l *ActivityLogger) onTeamAssigned(e *TeamAssignedEvent) {
	l.log.WithFields(logrus.Fields{
		"team":     e.TeamName,
		"team_id":  e.TeamID,
		"assigned": e.Assigned,
	}).Info("records assigned to team")
}

func (l *ActivityLogger) onLeadsDistributed(e *LeadsDistributedEvent) {
	l.log.WithFields(logrus.Fields{
		"team_id":  e.TeamID,
		"assigned": e.Assigned,
	}).Info("records distributed to team leads")
}

func (l *ActivityLogger) onClosedUpserted(e *ClosedUpsertedEvent) {
	l.log.WithFields(logrus.Fields{
		"team_id":   e.TeamID,
		"processed": e.Processed,
		"skipped":   e.Skipped,
	}).Info("closure requests recorded")
}

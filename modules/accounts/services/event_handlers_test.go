package services

import (
	"testing"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/mailstock/pkg/eventbus"
)

func TestActivityLogger_LogsBusEvents(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	bus := eventbus.NewEventPublisher(logger)
	NewActivityLogger(logger).Register(bus)
	require.Equal(t, 4, bus.SubscribersCount())

	bus.Publish(&RecordsImportedEvent{Files: 1, Imported: 5, Duplicates: []string{"a@gmail.com"}})
	bus.Publish(&TeamAssignedEvent{TeamID: 2, TeamName: "Manager 1", Assigned: 3})
	bus.Publish(&LeadsDistributedEvent{TeamID: 2, Assigned: 1})
	bus.Publish(&ClosedUpsertedEvent{TeamID: 2, Processed: 4, Skipped: 1})

	require.Len(t, hook.Entries, 4)
	require.Equal(t, "records imported", hook.Entries[0].Message)
	require.Equal(t, 5, hook.Entries[0].Data["imported"])
	require.Equal(t, 1, hook.Entries[0].Data["duplicates"])
	require.Equal(t, "records assigned to team", hook.Entries[1].Message)
	require.Equal(t, "Manager 1", hook.Entries[1].Data["team"])
	require.Equal(t, "records distributed to team leads", hook.Entries[2].Message)
	require.Equal(t, "closure requests recorded", hook.Entries[3].Message)
}

package services

// Events published on the application bus after successful mutations.

type RecordsImportedEvent struct {
	Files      int
	Imported   int
	Duplicates []string
}

type TeamAssignedEvent struct {
	TeamID   uint
	TeamName string
	Assigned int
}

type LeadsDistributedEvent struct {
	TeamID   uint
	Assigned int
}

type ClosedUpsertedEvent struct {
	TeamID    uint
	Processed int
	Skipped   int
}

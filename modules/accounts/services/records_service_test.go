package services

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/domain/entities/sourcefile"
)

func stageRecord(stage record.Stage, accountID, provider string, teamID, assigneeID *uint) *record.Record {
	return &record.Record{
		Stage:      stage,
		AccountID:  accountID,
		Secret:     "pw",
		Provider:   provider,
		Status:     record.StatusWorking,
		TeamID:     teamID,
		AssigneeID: assigneeID,
	}
}

func TestRecordsList_ManagerScopedToOwnTeam(t *testing.T) {
	team1, team2 := uint(1), uint(2)
	records := newMemRecordRepo(
		stageRecord(record.StageManager, "a@gmail.com", "gmail", &team1, nil),
		stageRecord(record.StageManager, "b@yahoo.com", "yahoo", &team1, nil),
		stageRecord(record.StageManager, "c@gmail.com", "gmail", &team2, nil),
	)
	svc := NewRecordsService(records, &memSourceFileRepo{})
	ctx := serviceContext(managerUser(team1))

	result, err := svc.List(ctx, record.StageManager, ListQuery{})
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Total)
	require.Len(t, result.Items, 2)
	for _, rec := range result.Items {
		require.Equal(t, team1, *rec.TeamID)
	}

	// dashboard provider breakdown is zero-filled
	require.Equal(t, int64(1), result.ProviderCounts["gmail"])
	require.Equal(t, int64(1), result.ProviderCounts["yahoo"])
	require.Equal(t, int64(0), result.ProviderCounts["hotmail"])
}

func TestRecordsList_ManagerCannotReadAdminStage(t *testing.T) {
	svc := NewRecordsService(newMemRecordRepo(), &memSourceFileRepo{})
	ctx := serviceContext(managerUser(1))

	_, err := svc.List(ctx, record.StageAdmin, ListQuery{})
	requireServiceError(t, err, http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED")
}

func TestRecordsList_Pagination(t *testing.T) {
	records := newMemRecordRepo()
	for i := 0; i < 15; i++ {
		rec := stageRecord(record.StageAdmin, fmt.Sprintf("user%d@x.com", i), "gmail", nil, nil)
		records.nextID++
		rec.ID = records.nextID
		records.records = append(records.records, rec)
	}
	svc := NewRecordsService(records, &memSourceFileRepo{})
	ctx := serviceContext(adminUser())

	first, err := svc.List(ctx, record.StageAdmin, ListQuery{Page: 1})
	require.NoError(t, err)
	require.Equal(t, int64(15), first.Total)
	require.Len(t, first.Items, 10)
	require.Equal(t, 2, first.TotalPages)
	require.True(t, first.HasNext)
	require.False(t, first.HasPrev)

	second, err := svc.List(ctx, record.StageAdmin, ListQuery{Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Items, 5)
	require.True(t, second.HasPrev)

	// out-of-range pages clamp to the last page
	clamped, err := svc.List(ctx, record.StageAdmin, ListQuery{Page: 99})
	require.NoError(t, err)
	require.Equal(t, 2, clamped.CurrentPage)
	require.Len(t, clamped.Items, 5)
}

func TestRecordsList_InvalidStatusFilter(t *testing.T) {
	svc := NewRecordsService(newMemRecordRepo(), &memSourceFileRepo{})
	ctx := serviceContext(adminUser())

	_, err := svc.List(ctx, record.StageAdmin, ListQuery{Status: "bogus"})
	requireServiceError(t, err, http.StatusBadRequest, "ACCOUNTS_INVALID")
}

func TestUpdateStatuses(t *testing.T) {
	team1 := uint(1)
	records := newMemRecordRepo(stageRecord(record.StageManager, "a@gmail.com", "gmail", &team1, nil))
	svc := NewRecordsService(records, &memSourceFileRepo{})
	ctx := serviceContext(managerUser(team1))

	updated, err := svc.UpdateStatuses(ctx, record.StageManager, map[uint]string{1: "closed"})
	require.NoError(t, err)
	require.Equal(t, 1, updated)
	require.Equal(t, record.StatusClosed, records.mustGet(record.StageManager, "a@gmail.com").Status)

	_, err = svc.UpdateStatuses(ctx, record.StageManager, map[uint]string{1: "broken"})
	requireServiceError(t, err, http.StatusBadRequest, "ACCOUNTS_INVALID")

	_, err = svc.UpdateStatuses(ctx, record.StageManager, map[uint]string{99: "closed"})
	requireServiceError(t, err, http.StatusNotFound, "ACCOUNTS_NOT_FOUND")
}

func TestUpdateStatuses_OtherTeamLooksLikeNotFound(t *testing.T) {
	team2 := uint(2)
	records := newMemRecordRepo(stageRecord(record.StageManager, "a@gmail.com", "gmail", &team2, nil))
	svc := NewRecordsService(records, &memSourceFileRepo{})
	ctx := serviceContext(managerUser(1))

	_, err := svc.UpdateStatuses(ctx, record.StageManager, map[uint]string{1: "closed"})
	requireServiceError(t, err, http.StatusNotFound, "ACCOUNTS_NOT_FOUND")
}

func TestDeleteRecord(t *testing.T) {
	team1 := uint(1)
	records := newMemRecordRepo(stageRecord(record.StageManager, "a@gmail.com", "gmail", &team1, nil))
	svc := NewRecordsService(records, &memSourceFileRepo{})
	ctx := serviceContext(managerUser(team1))

	require.NoError(t, svc.Delete(ctx, record.StageManager, 1))
	require.Nil(t, records.mustGet(record.StageManager, "a@gmail.com"))

	err := svc.Delete(ctx, record.StageManager, 1)
	requireServiceError(t, err, http.StatusNotFound, "ACCOUNTS_NOT_FOUND")
}

func TestDeleteAll_LeadOnlyTouchesOwnRecords(t *testing.T) {
	team1 := uint(1)
	lead := leadUser(30, team1, "gmail")
	otherLead := uint(31)
	records := newMemRecordRepo(
		stageRecord(record.StageTeamLead, "a@gmail.com", "gmail", &team1, &lead.ID),
		stageRecord(record.StageTeamLead, "b@gmail.com", "gmail", &team1, &otherLead),
	)
	svc := NewRecordsService(records, &memSourceFileRepo{})

	deleted, err := svc.DeleteAll(serviceContext(lead), record.StageTeamLead)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
	require.NotNil(t, records.mustGet(record.StageTeamLead, "b@gmail.com"))
}

func TestSourceFileOperations(t *testing.T) {
	files := &memSourceFileRepo{}
	ctx := serviceContext(adminUser())

	fileID := uint(0)
	records := newMemRecordRepo(stageRecord(record.StageAdmin, "a@gmail.com", "gmail", nil, nil))
	svc := NewRecordsService(records, files)

	require.NoError(t, files.Create(ctx, &sourcefile.SourceFile{FileName: "batch.xlsx", Source: "A"}))
	fileID = 1
	records.records[0].SourceFileID = &fileID

	listed, err := svc.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "batch.xlsx", listed[0].FileName)

	deleted, err := svc.DeleteFileRecords(ctx, fileID)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
	require.Len(t, files.files, 1)

	require.NoError(t, svc.DeleteFile(ctx, fileID))
	require.Empty(t, files.files)

	err = svc.DeleteFile(ctx, fileID)
	requireServiceError(t, err, http.StatusNotFound, "ACCOUNTS_NOT_FOUND")
}

func TestDeleteFile_OnlyTouchesAdminStage(t *testing.T) {
	files := &memSourceFileRepo{}
	ctx := serviceContext(adminUser())

	team1 := uint(1)
	records := newMemRecordRepo(
		stageRecord(record.StageAdmin, "a@gmail.com", "gmail", &team1, nil),
		stageRecord(record.StageManager, "a@gmail.com", "gmail", &team1, nil),
	)
	svc := NewRecordsService(records, files)

	require.NoError(t, files.Create(ctx, &sourcefile.SourceFile{FileName: "batch.xlsx", Source: "A"}))
	fileID := uint(1)
	records.records[0].SourceFileID = &fileID
	records.records[1].SourceFileID = &fileID

	require.NoError(t, svc.DeleteFile(ctx, fileID))
	require.Empty(t, files.files)

	_, err := records.GetByAccountID(ctx, record.StageAdmin, "a@gmail.com")
	require.Error(t, err)
	managerCopy := records.mustGet(record.StageManager, "a@gmail.com")
	require.NotNil(t, managerCopy)
}

func TestDeleteFileRecords_UnknownFile(t *testing.T) {
	files := &memSourceFileRepo{}
	ctx := serviceContext(adminUser())

	records := newMemRecordRepo()
	svc := NewRecordsService(records, files)

	_, err := svc.DeleteFileRecords(ctx, 1)
	requireServiceError(t, err, http.StatusNotFound, "ACCOUNTS_NOT_FOUND")
}

func TestImportLeadSheet(t *testing.T) {
	team1 := uint(1)
	lead := leadUser(40, team1, "gmail")
	otherLead := uint(41)
	records := newMemRecordRepo(
		stageRecord(record.StageTeamLead, "a@gmail.com", "gmail", &team1, &lead.ID),
		stageRecord(record.StageTeamLead, "b@gmail.com", "gmail", &team1, &otherLead),
	)
	svc := NewRecordsService(records, &memSourceFileRepo{})
	ctx := serviceContext(lead)

	data := sheetBytes(t, [][]any{
		{"Gmail ID", "New Password"},
		{"a@gmail.com", "rotated"},
		{"b@gmail.com", "stolen"},
		{"c@gmail.com", "fresh"},
	})

	result, err := svc.ImportLeadSheet(ctx, data, "closures.xlsx")
	require.NoError(t, err)
	require.Equal(t, 1, result.Updated)
	require.Equal(t, 1, result.Created)

	require.Equal(t, "rotated", records.mustGet(record.StageTeamLead, "a@gmail.com").NewSecret)
	// records held by another lead are left alone
	require.Equal(t, "", records.mustGet(record.StageTeamLead, "b@gmail.com").NewSecret)

	created := records.mustGet(record.StageTeamLead, "c@gmail.com")
	require.NotNil(t, created)
	require.Equal(t, lead.ID, *created.AssigneeID)
	require.Equal(t, "gmail", created.Provider)
	require.Equal(t, record.StatusWorking, created.Status)
}

func TestImportLeadSheet_RequiresTeamLead(t *testing.T) {
	svc := NewRecordsService(newMemRecordRepo(), &memSourceFileRepo{})
	ctx := serviceContext(managerUser(1))

	_, err := svc.ImportLeadSheet(ctx, []byte("x"), "x.xlsx")
	requireServiceError(t, err, http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED")
}

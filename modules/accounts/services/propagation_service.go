package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/modules/core/domain/entities/team"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/eventbus"
	"github.com/iota-uz/mailstock/pkg/metrics"
)

type PropagationService struct {
	records   record.Repository
	teams     team.Repository
	users     user.Repository
	publisher eventbus.EventBus
}

func NewPropagationService(
	records record.Repository,
	teams team.Repository,
	users user.Repository,
	publisher eventbus.EventBus,
) *PropagationService {
	return &PropagationService{records: records, teams: teams, users: users, publisher: publisher}
}

type AssignResult struct {
	Message  string `json:"message"`
	Assigned int    `json:"assigned"`
}

// AssignToTeam hands admin-stage records to a team: the admin record is
// stamped with the team and a manager-stage copy is inserted unless one
// already exists for the same identifier.
func (s *PropagationService) AssignToTeam(ctx context.Context, teamName string, recordIDs []uint) (*AssignResult, error) {
	u, err := composables.UseUser(ctx)
	if err != nil || !u.IsAdmin {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "admin access required", err)
	}
	if !team.IsValidName(teamName) {
		return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "invalid team selected", nil)
	}
	if len(recordIDs) == 0 {
		return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "no emails selected", nil)
	}

	var result *AssignResult
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		t, err := s.teams.GetOrCreateByName(txCtx, teamName)
		if err != nil {
			return mapPgErrorToServiceError(err)
		}

		requested, err := s.records.List(txCtx, &record.FindParams{Stage: record.StageAdmin, IDs: recordIDs})
		if err != nil {
			return mapPgErrorToServiceError(err)
		}

		var eligible []*record.Record
		alreadyAssigned := 0
		for _, rec := range requested {
			if rec.TeamID != nil {
				alreadyAssigned++
				continue
			}
			eligible = append(eligible, rec)
		}

		if len(requested) > 0 && alreadyAssigned == len(requested) {
			return newServiceError(http.StatusBadRequest, "ACCOUNTS_ALREADY_ASSIGNED", "emails were already assigned", nil)
		}
		if len(eligible) == 0 {
			return newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "no valid unassigned emails found", nil)
		}

		assigned := 0
		for _, rec := range eligible {
			rec.TeamID = &t.ID
			if err := s.records.Update(txCtx, rec); err != nil {
				return mapPgErrorToServiceError(err)
			}

			exists, err := s.records.Exists(txCtx, record.StageManager, rec.AccountID)
			if err != nil {
				return mapPgErrorToServiceError(err)
			}
			if exists {
				if logger, ok := composables.TryUseLogger(txCtx); ok {
					logger.Warnf("manager copy of %s already exists, skipping", rec.AccountID)
				}
				continue
			}

			managerCopy := rec.CopyTo(record.StageManager)
			managerCopy.TeamID = &t.ID
			managerCopy.AssigneeID = nil
			if err := s.records.Create(txCtx, managerCopy); err != nil {
				return mapPgErrorToServiceError(err)
			}
			assigned++
		}

		metrics.PropagatedRecords.WithLabelValues("admin_to_manager").Add(float64(assigned))
		s.publisher.Publish(&TeamAssignedEvent{TeamID: t.ID, TeamName: t.Name, Assigned: assigned})
		result = &AssignResult{
			Message:  fmt.Sprintf("%d emails assigned to %s", assigned, t.Name),
			Assigned: assigned,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type DistributeResult struct {
	Message  string `json:"message"`
	Assigned int    `json:"assigned"`
}

// DistributeToLeads copies the caller's manager-stage records to the team
// leads whose provider affinity matches each record's provider. A record is
// copied at most once; the manager record is flagged as distributed.
func (s *PropagationService) DistributeToLeads(ctx context.Context) (*DistributeResult, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "authentication required", err)
	}
	if u.Role != user.RoleManager || !u.InTeam() {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "manager access required", nil)
	}

	var result *DistributeResult
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		candidates, err := s.records.List(txCtx, &record.FindParams{Stage: record.StageManager, TeamID: u.TeamID})
		if err != nil {
			return mapPgErrorToServiceError(err)
		}
		if len(candidates) == 0 {
			return newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "no emails to distribute", nil)
		}

		leads, err := s.users.List(txCtx, &user.FindParams{TeamID: u.TeamID, Role: user.RoleTL})
		if err != nil {
			return mapPgErrorToServiceError(err)
		}
		if len(leads) == 0 {
			return newServiceError(http.StatusBadRequest, "ACCOUNTS_NO_LEADS", "no team leads found for this team", nil)
		}

		leadsByProvider := make(map[string]*user.User)
		for _, lead := range leads {
			if affinity := strings.ToLower(strings.TrimSpace(lead.ProviderAffinity)); affinity != "" {
				leadsByProvider[affinity] = lead
			}
		}

		assigned := 0
		already := 0
		for _, rec := range candidates {
			if rec.IsDistributed {
				already++
				continue
			}
			exists, err := s.records.Exists(txCtx, record.StageTeamLead, rec.AccountID)
			if err != nil {
				return mapPgErrorToServiceError(err)
			}
			if exists {
				already++
				continue
			}

			lead, ok := leadsByProvider[strings.ToLower(rec.Provider)]
			if !ok {
				continue
			}

			leadCopy := rec.CopyTo(record.StageTeamLead)
			leadCopy.AssigneeID = &lead.ID
			if err := s.records.Create(txCtx, leadCopy); err != nil {
				return mapPgErrorToServiceError(err)
			}
			if err := s.records.SetDistributed(txCtx, rec.ID, true); err != nil {
				return mapPgErrorToServiceError(err)
			}
			assigned++
		}

		switch {
		case assigned > 0:
			result = &DistributeResult{
				Message:  fmt.Sprintf("%d emails assigned to team leads", assigned),
				Assigned: assigned,
			}
		case already == len(candidates):
			return newServiceError(http.StatusBadRequest, "ACCOUNTS_ALREADY_ASSIGNED", "emails were already assigned", nil)
		default:
			result = &DistributeResult{Message: "no emails were assigned (no matching leads)"}
		}

		metrics.PropagatedRecords.WithLabelValues("manager_to_teamlead").Add(float64(assigned))
		s.publisher.Publish(&LeadsDistributedEvent{TeamID: *u.TeamID, Assigned: assigned})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type ClosedRow struct {
	AccountID       string
	Secret          string
	RecoveryContact string
	NewSecret       string
}

type ClosedUpsertResult struct {
	Message   string `json:"message"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
}

// UpsertClosed records closure requests by account identifier. The first
// claimant keeps ownership: a closed-stage record owned by another user is
// left untouched and counted as skipped.
func (s *PropagationService) UpsertClosed(ctx context.Context, rows []ClosedRow) (*ClosedUpsertResult, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "authentication required", err)
	}
	if u.Role != user.RoleManager && u.Role != user.RoleTL {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "manager or team lead access required", nil)
	}
	if len(rows) == 0 {
		return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "no rows to process", nil)
	}

	var result *ClosedUpsertResult
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		processed := 0
		skipped := 0
		for _, row := range rows {
			accountID := strings.TrimSpace(row.AccountID)
			if accountID == "" {
				skipped++
				continue
			}

			existing, err := s.records.GetByAccountID(txCtx, record.StageClosed, accountID)
			if err != nil {
				if !errors.Is(err, pgx.ErrNoRows) {
					return mapPgErrorToServiceError(err)
				}
				rec := &record.Record{
					Stage:           record.StageClosed,
					AccountID:       accountID,
					Secret:          row.Secret,
					RecoveryContact: row.RecoveryContact,
					Provider:        record.InferProvider(accountID),
					Status:          record.StatusPendingClosed,
					NewSecret:       row.NewSecret,
					TeamID:          u.TeamID,
					AssigneeID:      &u.ID,
				}
				if err := s.records.Create(txCtx, rec); err != nil {
					return mapPgErrorToServiceError(err)
				}
				processed++
				continue
			}

			if existing.AssigneeID != nil && *existing.AssigneeID != u.ID {
				skipped++
				continue
			}
			if existing.Status == record.StatusPendingClosed &&
				existing.NewSecret == row.NewSecret &&
				(row.Secret == "" || existing.Secret == row.Secret) &&
				(row.RecoveryContact == "" || existing.RecoveryContact == row.RecoveryContact) {
				continue
			}

			existing.Status = record.StatusPendingClosed
			existing.NewSecret = row.NewSecret
			if row.Secret != "" {
				existing.Secret = row.Secret
			}
			if row.RecoveryContact != "" {
				existing.RecoveryContact = row.RecoveryContact
			}
			existing.TeamID = u.TeamID
			existing.AssigneeID = &u.ID
			if err := s.records.Update(txCtx, existing); err != nil {
				return mapPgErrorToServiceError(err)
			}
			processed++
		}

		metrics.PropagatedRecords.WithLabelValues("closed_upsert").Add(float64(processed))
		var teamID uint
		if u.TeamID != nil {
			teamID = *u.TeamID
		}
		s.publisher.Publish(&ClosedUpsertedEvent{TeamID: teamID, Processed: processed, Skipped: skipped})
		result = &ClosedUpsertResult{
			Message:   fmt.Sprintf("%d emails processed, %d skipped", processed, skipped),
			Processed: processed,
			Skipped:   skipped,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

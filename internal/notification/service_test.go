package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wapangaji/kiganjani/internal/models"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), NewMemoryPreferenceRepository())
}

func TestCreateAndList(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	n, err := svc.Create(ctx, &models.Notification{
		RecipientID: "user-1",
		Title:       "Rent overdue",
		Message:     "Unit 0-01 rent is 5 days late",
		Type:        models.NotifyRentOverdue,
		Priority:    "high",
	})
	require.NoError(t, err)
	require.NotNil(t, n)
	require.False(t, n.IsRead)

	_, err = svc.Create(ctx, &models.Notification{
		RecipientID: "user-1", Title: "x", Type: "gossip",
	})
	require.ErrorIs(t, err, ErrValidation)

	list, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	other, err := svc.List(ctx, "user-2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestMarkReadAndCounts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var first *models.Notification
	for i := 0; i < 3; i++ {
		n, err := svc.Create(ctx, &models.Notification{
			RecipientID: "user-1",
			Title:       "Alert",
			Type:        models.NotifyAdminAlert,
		})
		require.NoError(t, err)
		if first == nil {
			first = n
		}
	}

	total, unread, err := svc.Counts(ctx, "user-1")
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.EqualValues(t, 3, unread)

	// only the recipient may mark
	_, err = svc.MarkRead(ctx, "user-2", first.ID)
	require.ErrorIs(t, err, ErrForbidden)

	n, err := svc.MarkRead(ctx, "user-1", first.ID)
	require.NoError(t, err)
	require.True(t, n.IsRead)
	require.NotNil(t, n.ReadAt)

	_, unread, err = svc.Counts(ctx, "user-1")
	require.NoError(t, err)
	require.EqualValues(t, 2, unread)

	require.NoError(t, svc.MarkAllRead(ctx, "user-1"))
	_, unread, err = svc.Counts(ctx, "user-1")
	require.NoError(t, err)
	require.Zero(t, unread)

	unreadList, err := svc.Unread(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, unreadList)
}

func TestPreferences_GetOrCreate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.Preferences(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 3, p.RentReminderDays)
	require.True(t, p.TenantUpdates)
	require.True(t, p.MaintenanceUpdates)

	days := 7
	off := false
	p, err = svc.UpdatePreferences(ctx, "user-1", PreferenceUpdate{
		RentReminderDays: &days,
		TenantUpdates:    &off,
	})
	require.NoError(t, err)
	require.Equal(t, 7, p.RentReminderDays)
	require.False(t, p.TenantUpdates)

	// persisted
	p, err = svc.Preferences(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 7, p.RentReminderDays)

	bad := 99
	_, err = svc.UpdatePreferences(ctx, "user-1", PreferenceUpdate{RentReminderDays: &bad})
	require.ErrorIs(t, err, ErrValidation)
}

func TestPreferencesSuppressCreation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	off := false
	_, err := svc.UpdatePreferences(ctx, "user-1", PreferenceUpdate{TenantUpdates: &off})
	require.NoError(t, err)

	n, err := svc.Create(ctx, &models.Notification{
		RecipientID: "user-1",
		Title:       "Tenant assigned",
		Type:        models.NotifyTenantAssigned,
	})
	require.NoError(t, err)
	require.Nil(t, n)

	list, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestEventHooks(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.TenantAssigned(ctx, "owner-1", &models.TenantOccupancy{ID: "occ-1"}, "Asha Juma", "0-01")
	svc.TenantVacated(ctx, "owner-1", &models.TenantOccupancy{ID: "occ-1"}, "Asha Juma", "0-01")
	svc.MaintenanceReported(ctx, "owner-1", &models.UnitMaintenance{
		ID: "m-1", IssueType: "plumbing", Description: "Burst pipe", Priority: models.PriorityEmergency,
	})

	list, err := svc.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, list, 3)

	byType := map[string]*models.Notification{}
	for _, n := range list {
		byType[n.Type] = n
	}
	require.Contains(t, byType, models.NotifyTenantAssigned)
	require.Contains(t, byType, models.NotifyTenantVacated)
	require.Contains(t, byType, models.NotifyMaintenanceRequest)
	require.Equal(t, "high", byType[models.NotifyMaintenanceRequest].Priority)
	require.Equal(t, "occ-1", byType[models.NotifyTenantAssigned].RelatedID)
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

func TestSupportService_CreateDefaultsToMediumOpen(t *testing.T) {
	f := newFixture(t)
	svc := NewSupportService(f.store.Tickets(), f.store.Users(), f.rt)
	user := f.addUser(nil)

	ticket, err := svc.Create(f.ctx, TicketCreateInput{UserID: user.ID, IssueType: "billing", Title: " Double charge "})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "Double charge", ticket.Title)
	assert.Regexp(t, `^TCK-[0-9A-F]{8}$`, ticket.TicketID)
}

func TestSupportService_Resolve(t *testing.T) {
	f := newFixture(t)
	svc := NewSupportService(f.store.Tickets(), f.store.Users(), f.rt)
	user := f.addUser(nil)
	ticket := f.addTicket(user.ID, domain.TicketStatusInProgress, domain.TicketPriorityHigh, testNow.AddDate(0, 0, -2))
	f.clock.Advance(time.Hour)

	resolved, err := svc.Resolve(f.ctx, ticket.ID, "Replaced SIM")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	require.NotNil(t, resolved.Resolution)
	assert.Equal(t, "Replaced SIM", *resolved.Resolution)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, testNow.Add(time.Hour), *resolved.ResolvedAt)

	_, err = svc.Resolve(f.ctx, ticket.ID, "again")
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestSupportService_UpdateRejectsBackwardsStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewSupportService(f.store.Tickets(), f.store.Users(), f.rt)
	user := f.addUser(nil)
	ticket := f.addTicket(user.ID, domain.TicketStatusResolved, domain.TicketPriorityLow, testNow)

	reopen := domain.TicketStatusOpen
	_, err := svc.Update(f.ctx, ticket.ID, TicketUpdateInput{Status: &reopen})
	assert.True(t, apperrors.IsInvalidState(err))

	closed := domain.TicketStatusClosed
	urgent := domain.TicketPriorityUrgent
	updated, err := svc.Update(f.ctx, ticket.ID, TicketUpdateInput{Status: &closed, Priority: &urgent})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	assert.Equal(t, domain.TicketPriorityUrgent, updated.Priority)
}

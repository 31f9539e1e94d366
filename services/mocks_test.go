package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/kinekixcc/kheladi-sub001/models"
	"github.com/kinekixcc/kheladi-sub001/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockTeamRepository struct {
	mock.Mock
}

func (m *mockTeamRepository) Create(ctx context.Context, team *models.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *mockTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *mockTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Team), args.Error(1)
}

func (m *mockTeamRepository) Update(ctx context.Context, team *models.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *mockTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	args := m.Called(ctx, teamID, logoKey)
	return args.Error(0)
}

func (m *mockTeamRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockTeamRepository) RemoveMember(ctx context.Context, teamID, userID int) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *mockTeamRepository) GetMember(ctx context.Context, teamID, userID int) (*models.TeamMember, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamMember), args.Error(1)
}

func (m *mockTeamRepository) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamMember), args.Error(1)
}

func (m *mockTeamRepository) SwapCaptain(ctx context.Context, teamID, newCaptainID, oldCaptainID int) error {
	args := m.Called(ctx, teamID, newCaptainID, oldCaptainID)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockTournamentRepository struct {
	mock.Mock
}

func (m *mockTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	args := m.Called(ctx, tournament)
	return args.Error(0)
}

func (m *mockTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tournament), args.Error(1)
}

func (m *mockTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tournament), args.Error(1)
}

func (m *mockTournamentRepository) IncrementTeamCount(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTournamentRepository) DecrementTeamCount(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTournamentRepository) IncrementParticipantCount(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTournamentRepository) DecrementParticipantCount(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockInvitationRepository struct {
	mock.Mock
}

func (m *mockInvitationRepository) Create(ctx context.Context, invitation *models.TeamInvitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *mockInvitationRepository) GetByID(ctx context.Context, id int) (*models.TeamInvitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamInvitation), args.Error(1)
}

func (m *mockInvitationRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.TeamInvitation, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TeamInvitation), args.Error(1)
}

func (m *mockInvitationRepository) ListPendingByInvitee(ctx context.Context, inviteeID int) ([]*models.TeamInvitation, error) {
	args := m.Called(ctx, inviteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TeamInvitation), args.Error(1)
}

func (m *mockInvitationRepository) UpdateStatus(ctx context.Context, id int, status models.InvitationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockInvitationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockTeamService struct {
	mock.Mock
}

func (m *mockTeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *mockTeamService) GetTeamByID(ctx context.Context, teamID int) (*models.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *mockTeamService) UpdateTeamDetails(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error) {
	args := m.Called(ctx, teamID, input, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *mockTeamService) DeleteTeam(ctx context.Context, teamID, currentUserID int) error {
	args := m.Called(ctx, teamID, currentUserID)
	return args.Error(0)
}

func (m *mockTeamService) AddMember(ctx context.Context, teamID, userID int, role models.TeamMemberRole) error {
	args := m.Called(ctx, teamID, userID, role)
	return args.Error(0)
}

func (m *mockTeamService) RemoveMember(ctx context.Context, teamID, userID int) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *mockTeamService) LeaveTeam(ctx context.Context, teamID, userID int) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *mockTeamService) TransferCaptaincy(ctx context.Context, teamID, newCaptainID, currentUserID int) error {
	args := m.Called(ctx, teamID, newCaptainID, currentUserID)
	return args.Error(0)
}

func (m *mockTeamService) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamMember), args.Error(1)
}

func (m *mockTeamService) UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, file io.Reader) (*models.Team, error) {
	args := m.Called(ctx, teamID, currentUserID, contentType, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

type mockInvitationService struct {
	mock.Mock
}

func (m *mockInvitationService) SendInvitation(ctx context.Context, input SendInvitationInput) (*models.TeamInvitation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamInvitation), args.Error(1)
}

func (m *mockInvitationService) AcceptInvitation(ctx context.Context, invitationID, currentUserID int) error {
	args := m.Called(ctx, invitationID, currentUserID)
	return args.Error(0)
}

func (m *mockInvitationService) DeclineInvitation(ctx context.Context, invitationID, currentUserID int) error {
	args := m.Called(ctx, invitationID, currentUserID)
	return args.Error(0)
}

func (m *mockInvitationService) ListUserInvitations(ctx context.Context, userID int) ([]*models.TeamInvitation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TeamInvitation), args.Error(1)
}

func (m *mockInvitationService) ListTeamInvitations(ctx context.Context, teamID, currentUserID int) ([]*models.TeamInvitation, error) {
	args := m.Called(ctx, teamID, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TeamInvitation), args.Error(1)
}

func (m *mockInvitationService) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (*storage.UploadResult, error) {
	args := m.Called(ctx, key, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *mockUploader) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockUploader) GetPublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

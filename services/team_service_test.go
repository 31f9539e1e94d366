package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kinekixcc/kheladi-sub001/models"
	"github.com/kinekixcc/kheladi-sub001/repositories"
)

func newTeamServiceForTest(teamRepo *mockTeamRepository, userRepo *mockUserRepository, tournamentRepo *mockTournamentRepository) TeamService {
	return NewTeamService(teamRepo, userRepo, tournamentRepo, nil, nil, nil, testLogger())
}

func TestCreateTeamRejectsShortName(t *testing.T) {
	svc := newTeamServiceForTest(new(mockTeamRepository), new(mockUserRepository), new(mockTournamentRepository))

	_, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:         "ab",
		SportType:    "futsal",
		TournamentID: 1,
		CaptainID:    7,
	})

	require.ErrorIs(t, err, ErrTeamNameTooShort)
}

func TestCreateTeamRequiresSportType(t *testing.T) {
	svc := newTeamServiceForTest(new(mockTeamRepository), new(mockUserRepository), new(mockTournamentRepository))

	_, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:         "Thunder",
		SportType:    "  ",
		TournamentID: 1,
		CaptainID:    7,
	})

	require.ErrorIs(t, err, ErrSportTypeRequired)
}

func TestCreateTeamDefaultsMaxMembersToTournamentCap(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	tournamentRepo := new(mockTournamentRepository)
	tournamentRepo.On("GetByID", mock.Anything, 1).Return(hybridTournament(), nil)
	tournamentRepo.On("IncrementTeamCount", mock.Anything, 1).Return(nil)
	teamRepo.On("Create", mock.Anything, mock.MatchedBy(func(team *models.Team) bool {
		return team.MaxMembers == 5 && team.CaptainID == 7
	})).Return(nil)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), tournamentRepo)

	team, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:         "Thunder",
		SportType:    "futsal",
		TournamentID: 1,
		CaptainID:    7,
	})

	require.NoError(t, err)
	require.Equal(t, 5, team.MaxMembers)
	teamRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateTeamRejectsSizeOutsideTournamentBounds(t *testing.T) {
	tournamentRepo := new(mockTournamentRepository)
	tournamentRepo.On("GetByID", mock.Anything, 1).Return(hybridTournament(), nil)

	svc := newTeamServiceForTest(new(mockTeamRepository), new(mockUserRepository), tournamentRepo)

	_, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:         "Thunder",
		SportType:    "futsal",
		TournamentID: 1,
		MaxMembers:   2, // below team_size_min of 4
		CaptainID:    7,
	})

	require.ErrorIs(t, err, ErrValidationFailed)
}

func TestCreateTeamMapsNameConflict(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	tournamentRepo := new(mockTournamentRepository)
	tournamentRepo.On("GetByID", mock.Anything, 1).Return(hybridTournament(), nil)
	tournamentRepo.On("IncrementTeamCount", mock.Anything, 1).Return(nil)
	tournamentRepo.On("DecrementTeamCount", mock.Anything, 1).Return(nil)
	teamRepo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrTeamNameConflict)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), tournamentRepo)

	_, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:         "Thunder",
		SportType:    "futsal",
		TournamentID: 1,
		CaptainID:    7,
	})

	require.ErrorIs(t, err, ErrTeamNameConflict)
	tournamentRepo.AssertCalled(t, "DecrementTeamCount", mock.Anything, 1)
}

func TestCreateTeamRequiresTeamPath(t *testing.T) {
	tournamentRepo := new(mockTournamentRepository)
	individualOnly := hybridTournament()
	individualOnly.RegistrationMode = models.RegistrationIndividual
	tournamentRepo.On("GetByID", mock.Anything, 1).Return(individualOnly, nil)

	svc := newTeamServiceForTest(new(mockTeamRepository), new(mockUserRepository), tournamentRepo)

	_, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:         "Thunder",
		SportType:    "futsal",
		TournamentID: 1,
		CaptainID:    7,
	})

	require.ErrorIs(t, err, ErrRegistrationPathClosed)
	tournamentRepo.AssertNotCalled(t, "IncrementTeamCount", mock.Anything, mock.Anything)
}

// Every creation path reserves its tournament slot here, so creating a team
// directly and deleting it cannot drift current_teams against the teams that
// actually exist.
func TestCreateTeamReservesTournamentSlot(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	tournamentRepo := new(mockTournamentRepository)
	tournamentRepo.On("GetByID", mock.Anything, 1).Return(hybridTournament(), nil)
	tournamentRepo.On("IncrementTeamCount", mock.Anything, 1).Return(nil)
	teamRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), tournamentRepo)

	_, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:         "Thunder",
		SportType:    "futsal",
		TournamentID: 1,
		CaptainID:    7,
	})

	require.NoError(t, err)
	tournamentRepo.AssertNumberOfCalls(t, "IncrementTeamCount", 1)
	tournamentRepo.AssertNotCalled(t, "DecrementTeamCount", mock.Anything, mock.Anything)
}

func TestCreateTeamFullTournament(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	tournamentRepo := new(mockTournamentRepository)
	tournamentRepo.On("GetByID", mock.Anything, 1).Return(hybridTournament(), nil)
	tournamentRepo.On("IncrementTeamCount", mock.Anything, 1).Return(repositories.ErrTournamentTeamsFull)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), tournamentRepo)

	_, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:         "Thunder",
		SportType:    "futsal",
		TournamentID: 1,
		CaptainID:    7,
	})

	require.ErrorIs(t, err, ErrTournamentFull)
	teamRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddMemberRefusesCaptainRole(t *testing.T) {
	svc := newTeamServiceForTest(new(mockTeamRepository), new(mockUserRepository), new(mockTournamentRepository))

	err := svc.AddMember(context.Background(), 1, 9, models.RoleCaptain)

	require.ErrorIs(t, err, ErrValidationFailed)
}

func TestAddMemberMapsDuplicate(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	userRepo := new(mockUserRepository)
	userRepo.On("GetByID", mock.Anything, 9).Return(&models.User{ID: 9}, nil)
	teamRepo.On("AddMember", mock.Anything, mock.Anything).Return(repositories.ErrTeamMemberConflict)

	svc := newTeamServiceForTest(teamRepo, userRepo, new(mockTournamentRepository))

	err := svc.AddMember(context.Background(), 1, 9, models.RoleMember)

	require.ErrorIs(t, err, ErrDuplicateMember)
}

func TestAddMemberMapsTeamFull(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	userRepo := new(mockUserRepository)
	userRepo.On("GetByID", mock.Anything, 9).Return(&models.User{ID: 9}, nil)
	teamRepo.On("AddMember", mock.Anything, mock.Anything).Return(repositories.ErrTeamFull)

	svc := newTeamServiceForTest(teamRepo, userRepo, new(mockTournamentRepository))

	err := svc.AddMember(context.Background(), 1, 9, models.RoleMember)

	require.ErrorIs(t, err, ErrTeamFull)
}

func TestAddMemberUnknownUser(t *testing.T) {
	userRepo := new(mockUserRepository)
	userRepo.On("GetByID", mock.Anything, 99).Return(nil, repositories.ErrUserNotFound)

	svc := newTeamServiceForTest(new(mockTeamRepository), userRepo, new(mockTournamentRepository))

	err := svc.AddMember(context.Background(), 1, 99, models.RoleMember)

	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestLeaveTeamBlocksCaptain(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, 1).Return(&models.Team{ID: 1, CaptainID: 7}, nil)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), new(mockTournamentRepository))

	err := svc.LeaveTeam(context.Background(), 1, 7)

	require.ErrorIs(t, err, ErrCaptainCannotLeave)
	teamRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveTeamRemovesRegularMember(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, 1).Return(&models.Team{ID: 1, CaptainID: 7}, nil)
	teamRepo.On("RemoveMember", mock.Anything, 1, 9).Return(nil)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), new(mockTournamentRepository))

	err := svc.LeaveTeam(context.Background(), 1, 9)

	require.NoError(t, err)
	teamRepo.AssertCalled(t, "RemoveMember", mock.Anything, 1, 9)
}

func TestTransferCaptaincyRequiresCurrentCaptain(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, 1).Return(&models.Team{ID: 1, CaptainID: 7}, nil)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), new(mockTournamentRepository))

	err := svc.TransferCaptaincy(context.Background(), 1, 9, 8)

	require.ErrorIs(t, err, ErrCaptainActionForbidden)
}

func TestTransferCaptaincyRequiresMembership(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, 1).Return(&models.Team{ID: 1, CaptainID: 7}, nil)
	teamRepo.On("GetMember", mock.Anything, 1, 9).Return(nil, repositories.ErrTeamMemberNotFound)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), new(mockTournamentRepository))

	err := svc.TransferCaptaincy(context.Background(), 1, 9, 7)

	require.ErrorIs(t, err, ErrMemberNotFound)
	teamRepo.AssertNotCalled(t, "SwapCaptain", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransferCaptaincySwapsRoles(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, 1).Return(&models.Team{ID: 1, CaptainID: 7}, nil)
	teamRepo.On("GetMember", mock.Anything, 1, 9).Return(&models.TeamMember{TeamID: 1, UserID: 9, Role: models.RoleMember}, nil)
	teamRepo.On("SwapCaptain", mock.Anything, 1, 9, 7).Return(nil)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), new(mockTournamentRepository))

	err := svc.TransferCaptaincy(context.Background(), 1, 9, 7)

	require.NoError(t, err)
	teamRepo.AssertCalled(t, "SwapCaptain", mock.Anything, 1, 9, 7)
}

func TestTransferCaptaincyToSelfIsNoOp(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, 1).Return(&models.Team{ID: 1, CaptainID: 7}, nil)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), new(mockTournamentRepository))

	err := svc.TransferCaptaincy(context.Background(), 1, 7, 7)

	require.NoError(t, err)
	teamRepo.AssertNotCalled(t, "SwapCaptain", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteTeamRequiresCaptain(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, 1).Return(&models.Team{ID: 1, TournamentID: 1, CaptainID: 7}, nil)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), new(mockTournamentRepository))

	err := svc.DeleteTeam(context.Background(), 1, 9)

	require.ErrorIs(t, err, ErrCaptainActionForbidden)
	teamRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// A timeout or connection failure classified by the store keeps its
// retryable identity through the service's error wrapping.
func TestGetTeamByIDSurfacesStoreOutage(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, 1).
		Return(nil, fmt.Errorf("query teams: %w", repositories.ErrStoreUnavailable))

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), new(mockTournamentRepository))

	_, err := svc.GetTeamByID(context.Background(), 1)

	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestDeleteTeamReleasesTournamentSlot(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	tournamentRepo := new(mockTournamentRepository)
	teamRepo.On("GetByID", mock.Anything, 1).Return(&models.Team{ID: 1, TournamentID: 3, CaptainID: 7}, nil)
	teamRepo.On("Delete", mock.Anything, 1).Return(nil)
	tournamentRepo.On("DecrementTeamCount", mock.Anything, 3).Return(nil)

	svc := newTeamServiceForTest(teamRepo, new(mockUserRepository), tournamentRepo)

	err := svc.DeleteTeam(context.Background(), 1, 7)

	require.NoError(t, err)
	tournamentRepo.AssertCalled(t, "DecrementTeamCount", mock.Anything, 3)
}

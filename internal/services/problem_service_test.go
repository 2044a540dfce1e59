package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/validator"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProblemService(repo *fakeRepo) ProblemService {
	return NewProblemService(repo, validator.New(), discardLogger())
}

func TestProblemService_Create(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestProblemService(repo)
	ctx := context.Background()

	setter := repo.seedUser("setter", nil, "x", models.PermissionSetter)
	player := repo.seedUser("player", nil, "x", models.PermissionPlayer)

	problem, err := svc.Create(ctx, setter, &CreateProblemRequest{Name: "warmup", Answer: strPtr("flag{1}"), ScoreInitial: 100})
	require.NoError(t, err)
	require.Equal(t, 100, problem.ScoreNow)
	require.Equal(t, setter.ID, problem.OwnerID)

	_, err = svc.Create(ctx, player, &CreateProblemRequest{Name: "nope", ScoreInitial: 100})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, setter, &CreateProblemRequest{Name: "warmup", ScoreInitial: 100})
	require.ErrorIs(t, err, ErrProblemNameTaken)
}

func TestProblemService_Redaction(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestProblemService(repo)
	ctx := context.Background()

	setter := repo.seedUser("setter", nil, "x", models.PermissionSetter)
	player := repo.seedUser("player", nil, "x", models.PermissionPlayer)
	problem := repo.seedProblem(setter.ID, "warmup", strPtr("flag{1}"), 100)

	got, err := svc.GetByID(ctx, nil, problem.ID)
	require.NoError(t, err)
	require.Nil(t, got.Answer, "anonymous viewers must not see the answer")

	got, err = svc.GetByID(ctx, player, problem.ID)
	require.NoError(t, err)
	require.Nil(t, got.Answer, "players must not see the answer")

	got, err = svc.GetByID(ctx, setter, problem.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Answer)

	listed, err := svc.List(ctx, player, 0, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Nil(t, listed[0].Answer)
}

func TestProblemService_SubmitAnswer_Wrong(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestProblemService(repo)
	ctx := context.Background()

	setter := repo.seedUser("setter", nil, "x", models.PermissionSetter)
	player := repo.seedUser("player", nil, "x", models.PermissionPlayer)
	problem := repo.seedProblem(setter.ID, "warmup", strPtr("flag{1}"), 100)

	status, err := svc.SubmitAnswer(ctx, player, player.ID, problem.ID, &SubmitAnswerRequest{Answer: "flag{wrong}"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionWrong, status)

	stored, err := repo.Problem().GetByID(ctx, problem.ID)
	require.NoError(t, err)
	require.Equal(t, 100, stored.ScoreNow, "wrong answers must not mutate state")

	solved, err := repo.Problem().HasSolve(ctx, player.ID, problem.ID)
	require.NoError(t, err)
	require.False(t, solved)
}

func TestProblemService_SubmitAnswer_DecayAndIdempotence(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestProblemService(repo)
	ctx := context.Background()

	setter := repo.seedUser("setter", nil, "x", models.PermissionSetter)
	player := repo.seedUser("player", nil, "x", models.PermissionPlayer)
	problem := repo.seedProblem(setter.ID, "warmup", strPtr("flag{1}"), 100)

	status, err := svc.SubmitAnswer(ctx, player, player.ID, problem.ID, &SubmitAnswerRequest{Answer: "flag{1}"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionAccepted, status)

	stored, err := repo.Problem().GetByID(ctx, problem.ID)
	require.NoError(t, err)
	require.Equal(t, 90, stored.ScoreNow)

	// Same user again: accepted, no second decay.
	status, err = svc.SubmitAnswer(ctx, player, player.ID, problem.ID, &SubmitAnswerRequest{Answer: "flag{1}"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionAccepted, status)

	stored, err = repo.Problem().GetByID(ctx, problem.ID)
	require.NoError(t, err)
	require.Equal(t, 90, stored.ScoreNow)
}

func TestProblemService_SubmitAnswer_NSolvers(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestProblemService(repo)
	ctx := context.Background()

	setter := repo.seedUser("setter", nil, "x", models.PermissionSetter)
	problem := repo.seedProblem(setter.ID, "warmup", strPtr("flag{1}"), 100)

	for i := 0; i < 5; i++ {
		solver := repo.seedUser("solver"+string(rune('a'+i)), nil, "x", models.PermissionPlayer)
		status, err := svc.SubmitAnswer(ctx, solver, solver.ID, problem.ID, &SubmitAnswerRequest{Answer: "flag{1}"})
		require.NoError(t, err)
		require.Equal(t, models.SubmissionAccepted, status)
	}

	stored, err := repo.Problem().GetByID(ctx, problem.ID)
	require.NoError(t, err)
	require.Equal(t, 100-5*10, stored.ScoreNow)
}

func TestProblemService_SubmitAnswer_DecayFloor(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestProblemService(repo)
	ctx := context.Background()

	setter := repo.seedUser("setter", nil, "x", models.PermissionSetter)
	problem := repo.seedProblem(setter.ID, "warmup", strPtr("flag{1}"), 100)

	// Nine solvers take the score down to one decay step.
	for i := 0; i < 9; i++ {
		solver := repo.seedUser("solver"+string(rune('a'+i)), nil, "x", models.PermissionPlayer)
		_, err := svc.SubmitAnswer(ctx, solver, solver.ID, problem.ID, &SubmitAnswerRequest{Answer: "flag{1}"})
		require.NoError(t, err)
	}
	stored, err := repo.Problem().GetByID(ctx, problem.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.ScoreNow)

	// The tenth solver is still accepted but the score holds at the step.
	late := repo.seedUser("late", nil, "x", models.PermissionPlayer)
	status, err := svc.SubmitAnswer(ctx, late, late.ID, problem.ID, &SubmitAnswerRequest{Answer: "flag{1}"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionAccepted, status)

	stored, err = repo.Problem().GetByID(ctx, problem.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.ScoreNow)
}

func TestProblemService_SubmitAnswer_Guards(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestProblemService(repo)
	ctx := context.Background()

	setter := repo.seedUser("setter", nil, "x", models.PermissionSetter)
	player := repo.seedUser("player", nil, "x", models.PermissionPlayer)
	other := repo.seedUser("other", nil, "x", models.PermissionPlayer)
	problem := repo.seedProblem(setter.ID, "warmup", strPtr("flag{1}"), 100)

	_, err := svc.SubmitAnswer(ctx, player, other.ID, problem.ID, &SubmitAnswerRequest{Answer: "flag{1}"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SubmitAnswer(ctx, player, player.ID, 9999, &SubmitAnswerRequest{Answer: "flag{1}"})
	require.ErrorIs(t, err, ErrProblemNotFound)
}

func TestProblemService_Update_Rescale(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestProblemService(repo)
	ctx := context.Background()

	setter := repo.seedUser("setter", nil, "x", models.PermissionSetter)
	problem := repo.seedProblem(setter.ID, "warmup", strPtr("flag{1}"), 100)

	// Two solves bring the score to 80 before the rescale.
	for i := 0; i < 2; i++ {
		solver := repo.seedUser("solver"+string(rune('a'+i)), nil, "x", models.PermissionPlayer)
		_, err := svc.SubmitAnswer(ctx, solver, solver.ID, problem.ID, &SubmitAnswerRequest{Answer: "flag{1}"})
		require.NoError(t, err)
	}

	newInitial := 200
	updated, err := svc.Update(ctx, setter, problem.ID, &UpdateProblemRequest{ScoreInitial: &newInitial})
	require.NoError(t, err)
	require.Equal(t, 200, updated.ScoreInitial)
	require.Equal(t, 160, updated.ScoreNow, "decay progress scales with the new initial score")
}

func TestProblemService_Update_Ownership(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestProblemService(repo)
	ctx := context.Background()

	owner := repo.seedUser("owner", nil, "x", models.PermissionSetter)
	rival := repo.seedUser("rival", nil, "x", models.PermissionSetter)
	root := repo.seedUser("admin", nil, "x", models.PermissionRoot)
	problem := repo.seedProblem(owner.ID, "warmup", strPtr("flag{1}"), 100)

	desc := "updated"
	_, err := svc.Update(ctx, rival, problem.ID, &UpdateProblemRequest{Description: &desc})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, root, problem.ID, &UpdateProblemRequest{Description: &desc})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, rival, problem.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, owner, problem.ID))

	_, err = svc.GetByID(ctx, owner, problem.ID)
	require.ErrorIs(t, err, ErrProblemNotFound)
}

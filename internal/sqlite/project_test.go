package sqlite

import (
	"context"
	"testing"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/project"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/repository"
	"github.com/stretchr/testify/require"
)

func newProject(id string, groupNumber int, leaderID string) *project.Project {
	return &project.Project{
		ID:                 id,
		GroupNumber:        groupNumber,
		LeaderID:           leaderID,
		MemberIDs:          []string{leaderID},
		Progress:           0,
		TechDocsStatus:     "In progress",
		PresentationStatus: "In progress",
		Status:             project.StatusActive,
	}
}

func TestProjectRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, newProject("p1", 42, "leader1"))
	require.NoError(t, err)

	retrieved, err := repo.GetActiveByLeader(ctx, "leader1")
	require.NoError(t, err)
	require.Equal(t, "p1", retrieved.ID)
	require.Equal(t, 42, retrieved.GroupNumber)
	require.Equal(t, project.StatusActive, retrieved.Status)
	require.Equal(t, []string{"leader1"}, retrieved.MemberIDs)
	require.False(t, retrieved.ConfirmationPending)

	byGroup, err := repo.GetActiveByGroup(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "p1", byGroup.ID)

	byMember, err := repo.GetActiveByMember(ctx, "leader1")
	require.NoError(t, err)
	require.Equal(t, "p1", byMember.ID)
}

func TestProjectRepository_CreateDuplicateLeader(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 42, "leader1")))

	err := repo.Create(ctx, newProject("p2", 43, "leader1"))
	require.ErrorIs(t, err, repository.ErrDuplicateLeader)
}

func TestProjectRepository_CreateDuplicateGroup(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 7, "leader1")))

	err := repo.Create(ctx, newProject("p2", 7, "leader2"))
	require.ErrorIs(t, err, repository.ErrDuplicateGroup)
}

func TestProjectRepository_UniquenessOnlyAmongActive(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 7, "leader1")))
	require.NoError(t, repo.Terminate(ctx, "p1"))

	// Same leader and group number are free again once the project is terminated.
	require.NoError(t, repo.Create(ctx, newProject("p2", 7, "leader1")))
}

func TestProjectRepository_GetNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	_, err := repo.GetActiveByLeader(ctx, "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_SetResources(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 42, "leader1")))

	channels := []project.ChannelResource{
		{ID: "cat", Kind: project.KindCategory},
		{ID: "info", Kind: project.KindInfo},
		{ID: "disc", Kind: project.KindDiscussion},
		{ID: "docs", Kind: project.KindDocuments},
		{ID: "voice", Kind: project.KindVoice},
	}
	require.NoError(t, repo.SetResources(ctx, "p1", "role1", "leadrole1", channels))

	retrieved, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "role1", retrieved.RoleID)
	require.Equal(t, "leadrole1", retrieved.LeaderRoleID)
	require.Equal(t, channels, retrieved.ChannelResources)
}

func TestProjectRepository_AddChannelKeepsOrder(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 42, "leader1")))
	require.NoError(t, repo.SetResources(ctx, "p1", "r", "lr", []project.ChannelResource{
		{ID: "cat", Kind: project.KindCategory},
	}))
	require.NoError(t, repo.AddChannel(ctx, "p1", project.ChannelResource{ID: "extra", Kind: project.KindVoice}))

	retrieved, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, retrieved.ChannelResources, 2)
	require.Equal(t, "extra", retrieved.ChannelResources[1].ID)
}

func TestProjectRepository_Members(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 42, "leader1")))
	require.NoError(t, repo.AddMember(ctx, "p1", "m1"))

	err := repo.AddMember(ctx, "p1", "m1")
	require.ErrorIs(t, err, repository.ErrConflict)

	retrieved, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, retrieved.MemberIDs, 2)

	require.NoError(t, repo.RemoveMember(ctx, "p1", "m1"))
	err = repo.RemoveMember(ctx, "p1", "m1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetActiveByMember(ctx, "m1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_UpdateDetailsPartial(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 42, "leader1")))

	progress := 60
	require.NoError(t, repo.UpdateDetails(ctx, "p1", project.DetailsUpdate{Progress: &progress}))

	retrieved, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 60, retrieved.Progress)
	require.Equal(t, "In progress", retrieved.TechDocsStatus)
	require.Equal(t, "In progress", retrieved.PresentationStatus)

	docs := "Done"
	require.NoError(t, repo.UpdateDetails(ctx, "p1", project.DetailsUpdate{TechDocsStatus: &docs}))

	retrieved, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 60, retrieved.Progress)
	require.Equal(t, "Done", retrieved.TechDocsStatus)
}

func TestProjectRepository_UpsertTaskOverwrites(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 42, "leader1")))
	require.NoError(t, repo.AddMember(ctx, "p1", "m1"))

	require.NoError(t, repo.UpsertTask(ctx, "p1", "m1", "design doc"))
	require.NoError(t, repo.UpsertTask(ctx, "p1", "m1", "slides"))

	retrieved, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, retrieved.Tasks, 1)
	require.Equal(t, "m1", retrieved.Tasks[0].MemberID)
	require.Equal(t, "slides", retrieved.Tasks[0].Task)
}

func TestProjectRepository_ConfirmationPendingCAS(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 42, "leader1")))

	require.NoError(t, repo.SetConfirmationPending(ctx, "p1"))

	// Second attempt loses the compare-and-set.
	err := repo.SetConfirmationPending(ctx, "p1")
	require.ErrorIs(t, err, repository.ErrConflict)

	require.NoError(t, repo.ClearConfirmationPending(ctx, "p1"))
	require.NoError(t, repo.SetConfirmationPending(ctx, "p1"))

	err = repo.SetConfirmationPending(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_Terminate(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 42, "leader1")))
	require.NoError(t, repo.SetConfirmationPending(ctx, "p1"))
	require.NoError(t, repo.Terminate(ctx, "p1"))

	retrieved, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, project.StatusTerminated, retrieved.Status)
	require.False(t, retrieved.ConfirmationPending)

	_, err = repo.GetActiveByLeader(ctx, "leader1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// Terminated is absorbing.
	err = repo.Terminate(ctx, "p1")
	require.ErrorIs(t, err, repository.ErrNotFound)
	err = repo.SetConfirmationPending(ctx, "p1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_DeleteCascades(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", 42, "leader1")))
	require.NoError(t, repo.AddMember(ctx, "p1", "m1"))
	require.NoError(t, repo.UpsertTask(ctx, "p1", "m1", "design doc"))
	require.NoError(t, repo.SetResources(ctx, "p1", "r", "lr", []project.ChannelResource{
		{ID: "cat", Kind: project.KindCategory},
	}))

	require.NoError(t, repo.Delete(ctx, "p1"))

	_, err := repo.GetByID(ctx, "p1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM project_members WHERE project_id = 'p1'`).Scan(&count))
	require.Zero(t, count)

	err = repo.Delete(ctx, "p1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_ListActive(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p2", 9, "leader2")))
	require.NoError(t, repo.Create(ctx, newProject("p1", 3, "leader1")))
	require.NoError(t, repo.Create(ctx, newProject("p3", 12, "leader3")))
	require.NoError(t, repo.Terminate(ctx, "p3"))

	projects, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, 3, projects[0].GroupNumber)
	require.Equal(t, 9, projects[1].GroupNumber)
}

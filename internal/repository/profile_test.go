package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"devlink/internal/cache"
	"devlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_CreateAndGetByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	profile := &models.Profile{
		UserID: user.ID,
		Handle: "alice",
		Status: "Developer",
		Skills: []string{"go", "postgres"},
	}
	require.NoError(t, repo.Create(ctx, profile))

	got, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Handle)
	assert.Equal(t, []string{"go", "postgres"}, got.Skills)
	require.NotNil(t, got.User)
	assert.Equal(t, "Alice", got.User.Name)
	assert.Empty(t, got.User.Password, "preload must not carry the password hash")
	assert.Empty(t, got.User.Email, "preload must not carry the owner's email")
}

func TestProfileRepository_PublicPayloadOmitsEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	createTestProfile(t, db, user.ID, "alice")

	got, err := repo.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)

	// Profiles are public; the serialized payload must not expose the
	// owner's email address.
	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alice@example.com")
	assert.NotContains(t, string(raw), `"email"`)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].User.Email)
}

func TestProfileRepository_GetByUserID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)

	got, err := repo.GetByUserID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileRepository_GetByHandle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	createTestProfile(t, db, user.ID, "alice")

	got, err := repo.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.UserID)

	missing, err := repo.GetByHandle(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProfileRepository_GetByHandle_CacheAside(t *testing.T) {
	db := setupTestDB(t)
	mr := setupTestCache(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	createTestProfile(t, db, user.ID, "alice")

	got, err := repo.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, mr.Exists(cache.ProfileByHandleKey("alice")))

	// The second read is served from the cache: drop the row behind the
	// repository's back and the profile still comes back.
	require.NoError(t, db.Delete(&models.Profile{}, got.ID).Error)
	cached, err := repo.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "alice", cached.Handle)
}

func TestProfileRepository_GetByUserID_CacheAside(t *testing.T) {
	db := setupTestDB(t)
	mr := setupTestCache(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	createTestProfile(t, db, user.ID, "alice")

	got, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, mr.Exists(cache.ProfileByUserKey(user.ID)))

	// A miss is not cached.
	missing, err := repo.GetByUserID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.False(t, mr.Exists(cache.ProfileByUserKey(9999)))
}

func TestProfileRepository_Update_InvalidatesCachedHandles(t *testing.T) {
	db := setupTestDB(t)
	mr := setupTestCache(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	profile := createTestProfile(t, db, user.ID, "alice")

	_, err := repo.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.ProfileByHandleKey("alice")))

	profile.Handle = "alice-dev"
	require.NoError(t, repo.Update(ctx, profile))

	// A handle rename drops both the old and the new handle keys, so a
	// lookup under the old handle cannot serve the stale entry.
	assert.False(t, mr.Exists(cache.ProfileByHandleKey("alice")))
	assert.False(t, mr.Exists(cache.ProfileByHandleKey("alice-dev")))

	gone, err := repo.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, gone)

	renamed, err := repo.GetByHandle(ctx, "alice-dev")
	require.NoError(t, err)
	require.NotNil(t, renamed)
	assert.Equal(t, "alice-dev", renamed.Handle)
}

func TestProfileRepository_Create_DuplicateHandle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	createTestProfile(t, db, alice.ID, "taken")

	err := repo.Create(ctx, &models.Profile{
		UserID: bob.ID,
		Handle: "taken",
		Status: "Developer",
		Skills: []string{"go"},
	})
	require.Error(t, err)

	fieldErrs, ok := err.(models.FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "That handle already exists", fieldErrs["handle"])
}

func TestProfileRepository_Update_KeepsHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	profile := createTestProfile(t, db, user.ID, "alice")
	require.NoError(t, repo.AddExperience(ctx, profile, &models.Experience{
		Title:   "Engineer",
		Company: "Acme",
		From:    time.Now().AddDate(-1, 0, 0),
	}))

	profile.Status = "Senior Developer"
	profile.Company = "Acme"
	require.NoError(t, repo.Update(ctx, profile))

	got, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Senior Developer", got.Status)
	assert.Equal(t, "Acme", got.Company)
	assert.Len(t, got.Experience, 1, "update must not touch the experience list")
}

func TestProfileRepository_Update_DuplicateHandle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	createTestProfile(t, db, alice.ID, "alice")
	bobProfile := createTestProfile(t, db, bob.ID, "bob")

	bobProfile.Handle = "alice"
	err := repo.Update(ctx, bobProfile)
	require.Error(t, err)

	fieldErrs, ok := err.(models.FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "That handle already exists", fieldErrs["handle"])
}

func TestProfileRepository_ExperienceOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	profile := createTestProfile(t, db, user.ID, "alice")

	older := &models.Experience{
		Title:     "Junior",
		Company:   "First Co",
		From:      time.Now().AddDate(-3, 0, 0),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	newer := &models.Experience{
		Title:     "Senior",
		Company:   "Second Co",
		From:      time.Now().AddDate(-1, 0, 0),
		CreatedAt: time.Now().Add(-1 * time.Hour),
	}
	require.NoError(t, repo.AddExperience(ctx, profile, older))
	require.NoError(t, repo.AddExperience(ctx, profile, newer))

	got, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Experience, 2)
	assert.Equal(t, "Senior", got.Experience[0].Title, "most recent entry comes first")
	assert.Equal(t, "Junior", got.Experience[1].Title)
}

func TestProfileRepository_RemoveExperience(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	profile := createTestProfile(t, db, user.ID, "alice")
	exp := &models.Experience{Title: "Engineer", Company: "Acme", From: time.Now()}
	require.NoError(t, repo.AddExperience(ctx, profile, exp))

	require.NoError(t, repo.RemoveExperience(ctx, profile, exp.ID))

	got, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Experience)

	// removing an unknown id is a no-op, not an error
	require.NoError(t, repo.RemoveExperience(ctx, profile, 9999))
}

func TestProfileRepository_RemoveExperience_OtherProfileScoped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	aliceProfile := createTestProfile(t, db, alice.ID, "alice")
	bobProfile := createTestProfile(t, db, bob.ID, "bob")

	exp := &models.Experience{Title: "Engineer", Company: "Acme", From: time.Now()}
	require.NoError(t, repo.AddExperience(ctx, aliceProfile, exp))

	// Bob cannot remove Alice's entry through his own profile.
	require.NoError(t, repo.RemoveExperience(ctx, bobProfile, exp.ID))

	got, err := repo.GetByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, got.Experience, 1)
}

func TestProfileRepository_EducationAddRemove(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	profile := createTestProfile(t, db, user.ID, "alice")

	edu := &models.Education{
		School:       "State University",
		Degree:       "BSc",
		FieldOfStudy: "Computer Science",
		From:         time.Now().AddDate(-5, 0, 0),
	}
	require.NoError(t, repo.AddEducation(ctx, profile, edu))

	got, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Education, 1)
	assert.Equal(t, "State University", got.Education[0].School)

	require.NoError(t, repo.RemoveEducation(ctx, profile, edu.ID))

	got, err = repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Education)
}

func TestProfileRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	createTestProfile(t, db, alice.ID, "alice")
	createTestProfile(t, db, bob.ID, "bob")

	profiles, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
	for _, p := range profiles {
		require.NotNil(t, p.User)
	}
}

func TestProfileRepository_DeleteWithUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	profile := createTestProfile(t, db, user.ID, "alice")
	require.NoError(t, repo.AddExperience(ctx, profile, &models.Experience{
		Title: "Engineer", Company: "Acme", From: time.Now(),
	}))
	require.NoError(t, repo.AddEducation(ctx, profile, &models.Education{
		School: "State University", Degree: "BSc", FieldOfStudy: "CS", From: time.Now(),
	}))

	require.NoError(t, repo.DeleteWithUser(ctx, user.ID))

	gone, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	deletedUser, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, deletedUser)

	var expCount, eduCount int64
	require.NoError(t, db.Model(&models.Experience{}).Count(&expCount).Error)
	require.NoError(t, db.Model(&models.Education{}).Count(&eduCount).Error)
	assert.Zero(t, expCount)
	assert.Zero(t, eduCount)
}

func TestProfileRepository_DeleteWithUser_NoProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	require.NoError(t, repo.DeleteWithUser(ctx, user.ID))

	deletedUser, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, deletedUser)
}

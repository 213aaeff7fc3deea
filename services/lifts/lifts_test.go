package lifts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbuddy/apperrors"
	"barbuddy/db"
)

type fakeStore struct {
	lifts map[uuid.UUID]db.Lift
}

func newFakeStore() *fakeStore {
	return &fakeStore{lifts: make(map[uuid.UUID]db.Lift)}
}

func (f *fakeStore) CreateLift(_ context.Context, arg db.CreateLiftParams) (db.Lift, error) {
	lift := db.Lift{
		ID:          uuid.New(),
		UserID:      arg.UserID,
		Type:        arg.Type,
		Weight:      arg.Weight,
		Reps:        arg.Reps,
		Sets:        arg.Sets,
		Date:        arg.Date,
		Rpe:         arg.Rpe,
		Description: arg.Description,
		CreatedAt:   time.Now(),
	}
	f.lifts[lift.ID] = lift
	return lift, nil
}

func (f *fakeStore) GetLift(_ context.Context, id, userID uuid.UUID) (db.Lift, error) {
	lift, ok := f.lifts[id]
	if !ok || lift.UserID != userID {
		return db.Lift{}, sql.ErrNoRows
	}
	return lift, nil
}

func (f *fakeStore) GetUserLifts(_ context.Context, userID uuid.UUID) ([]db.Lift, error) {
	var result []db.Lift
	for _, l := range f.lifts {
		if l.UserID == userID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (f *fakeStore) GetLastLift(_ context.Context, userID uuid.UUID) (db.Lift, error) {
	var last db.Lift
	found := false
	for _, l := range f.lifts {
		if l.UserID == userID && (!found || l.Date.After(last.Date)) {
			last = l
			found = true
		}
	}
	if !found {
		return db.Lift{}, sql.ErrNoRows
	}
	return last, nil
}

func (f *fakeStore) GetMaxLifts(_ context.Context, userID uuid.UUID) ([]db.MaxLiftRow, error) {
	maxes := make(map[string]float64)
	for _, l := range f.lifts {
		if l.UserID == userID && l.Weight > maxes[l.Type] {
			maxes[l.Type] = l.Weight
		}
	}
	var rows []db.MaxLiftRow
	for t, w := range maxes {
		rows = append(rows, db.MaxLiftRow{Type: t, MaxWeight: w})
	}
	return rows, nil
}

func (f *fakeStore) UpdateLift(_ context.Context, arg db.UpdateLiftParams) (db.Lift, error) {
	lift, ok := f.lifts[arg.ID]
	if !ok || lift.UserID != arg.UserID {
		return db.Lift{}, sql.ErrNoRows
	}
	lift.Type = arg.Type
	lift.Weight = arg.Weight
	lift.Reps = arg.Reps
	lift.Sets = arg.Sets
	lift.Rpe = arg.Rpe
	lift.Description = arg.Description
	f.lifts[arg.ID] = lift
	return lift, nil
}

func (f *fakeStore) DeleteLift(_ context.Context, id, userID uuid.UUID) (int64, error) {
	lift, ok := f.lifts[id]
	if !ok || lift.UserID != userID {
		return 0, nil
	}
	delete(f.lifts, id)
	return 1, nil
}

func TestCreateLift(t *testing.T) {
	svc := NewLiftService(newFakeStore())
	userID := uuid.New()
	rpe := 8.5

	lift, err := svc.Create(context.Background(), userID, CreateParams{
		Type:   "deadlift",
		Weight: 180,
		Reps:   3,
		Sets:   5,
		Rpe:    &rpe,
	})
	require.NoError(t, err)
	assert.Equal(t, userID, lift.UserID)
	assert.Equal(t, "deadlift", lift.Type)
	assert.True(t, lift.Rpe.Valid)
	assert.Equal(t, 8.5, lift.Rpe.Float64)
	assert.False(t, lift.Date.IsZero())
}

func TestCreateLiftValidation(t *testing.T) {
	svc := NewLiftService(newFakeStore())

	tests := []struct {
		name   string
		params CreateParams
	}{
		{"missing type", CreateParams{Weight: 100, Reps: 5, Sets: 3}},
		{"zero weight", CreateParams{Type: "squat", Reps: 5, Sets: 3}},
		{"negative reps", CreateParams{Type: "squat", Weight: 100, Reps: -1, Sets: 3}},
		{"rpe out of range", CreateParams{Type: "squat", Weight: 100, Reps: 5, Sets: 3, Rpe: ptr(11.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), tt.params)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.FromError(err).Code)
		})
	}
}

func TestGetLiftScopedToOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewLiftService(store)
	owner := uuid.New()

	lift, err := svc.Create(context.Background(), owner, CreateParams{
		Type: "bench", Weight: 100, Reps: 5, Sets: 3,
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), lift.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, lift.ID, got.ID)

	// Another user cannot see it.
	_, err = svc.Get(context.Background(), lift.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.FromError(err).Code)
}

func TestLastAndMax(t *testing.T) {
	store := newFakeStore()
	svc := NewLiftService(store)
	userID := uuid.New()

	_, err := svc.Create(context.Background(), userID, CreateParams{
		Type: "squat", Weight: 120, Reps: 5, Sets: 3, Date: time.Now().Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), userID, CreateParams{
		Type: "squat", Weight: 140, Reps: 3, Sets: 3, Date: time.Now().Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	last, err := svc.Last(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 140.0, last.Weight)

	maxes, err := svc.Max(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, maxes, 1)
	assert.Equal(t, 140.0, maxes[0].MaxWeight)
}

func TestLastNoLifts(t *testing.T) {
	svc := NewLiftService(newFakeStore())

	_, err := svc.Last(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.FromError(err).Code)
}

func TestDeleteLift(t *testing.T) {
	store := newFakeStore()
	svc := NewLiftService(store)
	owner := uuid.New()

	lift, err := svc.Create(context.Background(), owner, CreateParams{
		Type: "bench", Weight: 100, Reps: 5, Sets: 3,
	})
	require.NoError(t, err)

	// Wrong owner deletes nothing.
	err = svc.Delete(context.Background(), lift.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), lift.ID, owner))

	err = svc.Delete(context.Background(), lift.ID, owner)
	require.Error(t, err)
}

func ptr(f float64) *float64 { return &f }

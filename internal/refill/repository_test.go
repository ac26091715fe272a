package refill

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/elskow/medtrack/internal/auth"
	"github.com/elskow/medtrack/internal/database/dbtest"
	"github.com/elskow/medtrack/internal/identity"
	"github.com/elskow/medtrack/internal/medication"
)

type fixture struct {
	db    *gorm.DB
	repo  Repository
	alice *auth.User
	bob   *auth.User
	para  *medication.Medication
	ibu   *medication.Medication
}

func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	db := dbtest.Open(t, &auth.User{}, &medication.Medication{}, &RefillRequest{})

	users := auth.NewRepository(db)
	alice := &auth.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: identity.RoleUser, IsActive: true}
	bob := &auth.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x", Role: identity.RoleUser, IsActive: true}
	require.NoError(t, users.CreateUser(ctx, alice))
	require.NoError(t, users.CreateUser(ctx, bob))

	meds := medication.NewRepository(db)
	para := &medication.Medication{Name: "Paracetamol", Dosage: "500mg", Quantity: 20}
	ibu := &medication.Medication{Name: "Ibuprofen", Dosage: "200mg", Quantity: 15}
	require.NoError(t, meds.Create(ctx, para))
	require.NoError(t, meds.Create(ctx, ibu))

	return &fixture{db: db, repo: NewRepository(db), alice: alice, bob: bob, para: para, ibu: ibu}
}

func (f *fixture) create(t *testing.T, user *auth.User, med *medication.Medication, qty int) *RefillRequest {
	req := &RefillRequest{UserID: &user.ID, MedicationID: med.ID, Quantity: qty, Status: StatusPending}
	require.NoError(t, f.repo.Create(context.Background(), req))
	return req
}

func TestRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.create(t, f.alice, f.para, 2)
	f.create(t, f.bob, f.ibu, 1)

	all, err := f.repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.repo.List(ctx, &f.alice.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Paracetamol", own[0].Medication.Name)
	require.NotNil(t, own[0].User)
	assert.Equal(t, "alice", own[0].User.Username)
	assert.Equal(t, StatusPending, own[0].Status)
	assert.False(t, own[0].RequestedAt.IsZero())
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := f.create(t, f.alice, f.para, 3)

	updated, err := f.repo.UpdateStatus(ctx, req.ID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)
	assert.Equal(t, 3, updated.Quantity)

	// terminal states can be left again
	updated, err = f.repo.UpdateStatus(ctx, req.ID, StatusDenied)
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, updated.Status)

	_, err = f.repo.UpdateStatus(ctx, 999, StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Aggregate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.create(t, f.alice, f.para, 1)
	f.create(t, f.alice, f.para, 1)
	f.create(t, f.bob, f.para, 1)
	f.create(t, f.bob, f.ibu, 1)

	all, err := f.repo.Aggregate(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []AggregateRow{
		{Name: "Paracetamol", RefillRequestCount: 3},
		{Name: "Ibuprofen", RefillRequestCount: 1},
	}, all)

	own, err := f.repo.Aggregate(ctx, &f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []AggregateRow{
		{Name: "Paracetamol", RefillRequestCount: 2},
		{Name: "Ibuprofen", RefillRequestCount: 0},
	}, own)
}

func TestRepository_MedicationDeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := f.create(t, f.alice, f.para, 1)

	require.NoError(t, medication.NewRepository(f.db).Delete(ctx, f.para.ID))

	_, err := f.repo.Get(ctx, req.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ot-practice-api/internal/models"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

func TestClientServiceCreate(t *testing.T) {
	repo := newFakeClientRepo()
	svc := NewClientService(repo, nil, nil)

	client, err := svc.Create(context.Background(), "u1", models.ClientRequest{FirstName: " Ada ", LastName: "Lovelace", BirthDate: "2021-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", client.FirstName)
	assert.Equal(t, "u1", client.UserID)
	assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), client.BirthDate)
}

func TestClientServiceRejectsBadBirthDate(t *testing.T) {
	svc := NewClientService(newFakeClientRepo(), nil, nil)

	_, err := svc.Create(context.Background(), "u1", models.ClientRequest{FirstName: "Ada", LastName: "Lovelace", BirthDate: "01/03/2021"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	future := time.Now().AddDate(1, 0, 0).Format(birthDateLayout)
	_, err = svc.Create(context.Background(), "u1", models.ClientRequest{FirstName: "Ada", LastName: "Lovelace", BirthDate: future})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestClientServiceOwnership(t *testing.T) {
	repo := newFakeClientRepo(&models.Client{ID: "c1", UserID: "u1", FirstName: "Ada", LastName: "Lovelace"})
	svc := NewClientService(repo, nil, nil)

	_, err := svc.Get(context.Background(), "u2", "c1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Update(context.Background(), "u2", "c1", models.ClientRequest{FirstName: "Eve", LastName: "X", BirthDate: "2020-01-01"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), "u2", "c1"), appErrors.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), "u1", "c1"))
}

func TestClientServiceListPagination(t *testing.T) {
	repo := newFakeClientRepo(
		&models.Client{ID: "c1", UserID: "u1", FirstName: "Ada"},
		&models.Client{ID: "c2", UserID: "u2", FirstName: "Bob"},
	)
	svc := NewClientService(repo, nil, nil)

	clients, pagination, err := svc.List(context.Background(), models.ClientFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, clients, 1)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, pagination)
}

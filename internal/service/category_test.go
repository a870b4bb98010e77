package service

import (
	"context"
	"testing"
	"time"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_CreateInvalidatesCachedList(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, c)

	wsID, actorID := uuid.New(), uuid.New()
	now := time.Now().UTC()
	bags := domain.Category{ID: uuid.New(), WorkspaceID: wsID, Name: "Bags", Slug: "bags", CreatedAt: now}
	shoes := domain.Category{ID: uuid.New(), WorkspaceID: wsID, Name: "Shoes", Slug: "shoes", CreatedAt: now}
	hats := domain.Category{ID: uuid.New(), WorkspaceID: wsID, Name: "Hats", Slug: "hats", CreatedAt: now}

	repo.On("ListByWorkspace", mock.Anything, wsID).Return([]domain.Category{bags, shoes}, nil).Once()

	first, err := svc.List(ctx, wsID)
	require.NoError(t, err)
	second, err := svc.List(ctx, wsID)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, first[1].Name, second[1].Name)

	repo.On("NameExists", mock.Anything, wsID, "Hats", uuid.Nil).Return(false, nil)
	repo.On("SlugExists", mock.Anything, wsID, "hats", uuid.Nil).Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Category")).Return(nil)

	created, err := svc.Create(ctx, actorID, wsID, domain.CategoryInput{Name: " Hats "})
	require.NoError(t, err)
	assert.Equal(t, "Hats", created.Name)
	assert.Equal(t, "hats", created.Slug)

	repo.On("ListByWorkspace", mock.Anything, wsID).Return([]domain.Category{bags, hats, shoes}, nil).Once()

	after, err := svc.List(ctx, wsID)
	require.NoError(t, err)
	names := []string{after[0].Name, after[1].Name, after[2].Name}
	assert.Equal(t, []string{"Bags", "Hats", "Shoes"}, names)

	repo.AssertNumberOfCalls(t, "ListByWorkspace", 2)
}

func TestCategoryService_CreateDuplicateName(t *testing.T) {
	c, _ := newTestCache(t)
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, c)
	wsID := uuid.New()

	repo.On("NameExists", mock.Anything, wsID, "shoes", uuid.Nil).Return(true, nil)

	_, err := svc.Create(context.Background(), uuid.New(), wsID, domain.CategoryInput{Name: "shoes"})

	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCategoryService_CreateSlugExhausted(t *testing.T) {
	stubSlugSuffix(t, "ffffff")
	c, _ := newTestCache(t)
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, c)
	wsID := uuid.New()

	repo.On("NameExists", mock.Anything, wsID, "Hats", uuid.Nil).Return(false, nil)
	repo.On("SlugExists", mock.Anything, wsID, mock.AnythingOfType("string"), uuid.Nil).Return(true, nil)

	_, err := svc.Create(context.Background(), uuid.New(), wsID, domain.CategoryInput{Name: "Hats"})

	assert.ErrorIs(t, err, domain.ErrConflict)
	repo.AssertNumberOfCalls(t, "SlugExists", maxSlugAttempts)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCategoryService_UpdateKeepsSlugForCaseChange(t *testing.T) {
	c, _ := newTestCache(t)
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, c)
	wsID := uuid.New()
	existing := &domain.Category{ID: uuid.New(), WorkspaceID: wsID, Name: "hats", Slug: "hats"}

	repo.On("GetByID", mock.Anything, wsID, existing.ID).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	updated, err := svc.Update(context.Background(), uuid.New(), wsID, existing.ID, domain.CategoryInput{Name: "Hats"})

	require.NoError(t, err)
	assert.Equal(t, "Hats", updated.Name)
	assert.Equal(t, "hats", updated.Slug)
	repo.AssertNotCalled(t, "NameExists", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "SlugExists", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCategoryService_DeleteWithProducts(t *testing.T) {
	c, _ := newTestCache(t)
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, c)
	wsID, id := uuid.New(), uuid.New()

	repo.On("CountProducts", mock.Anything, wsID, id).Return(3, nil)

	err := svc.Delete(context.Background(), uuid.New(), wsID, id)

	assert.ErrorIs(t, err, domain.ErrConflict)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

package service_test

import (
	"context"
	"testing"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/avolkov/taskboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFeedRepo struct {
	ListPublicFunc func(ctx context.Context, limit, offset uint64) ([]models.Todo, error)
}

func (m *mockFeedRepo) ListPublic(ctx context.Context, limit, offset uint64) ([]models.Todo, error) {
	return m.ListPublicFunc(ctx, limit, offset)
}

func feedTodos() []models.Todo {
	return []models.Todo{
		{Title: "Buy milk", Tags: []string{"home"}},
		{Title: "Write report", Tags: []string{"work"}},
	}
}

func TestFilter_IdentityOnEmptyFilters(t *testing.T) {
	todos := feedTodos()
	assert.Equal(t, todos, service.Filter(todos, "", ""))
}

func TestFilter_Scenarios(t *testing.T) {
	todos := feedTodos()

	byTerm := service.Filter(todos, "milk", "")
	require.Len(t, byTerm, 1)
	assert.Equal(t, "Buy milk", byTerm[0].Title)

	byTag := service.Filter(todos, "", "work")
	require.Len(t, byTag, 1)
	assert.Equal(t, "Write report", byTag[0].Title)

	assert.Empty(t, service.Filter(todos, "zzz", ""))
}

func TestFilter_CaseInsensitiveTitleOrDescription(t *testing.T) {
	todos := []models.Todo{
		{Title: "Groceries", Description: "buy MILK and eggs"},
		{Title: "MILK the cows"},
		{Title: "Unrelated"},
	}

	got := service.Filter(todos, "milk", "")
	assert.Len(t, got, 2)
}

func TestFilter_ConstraintsCompose(t *testing.T) {
	todos := []models.Todo{
		{Title: "Buy milk", Tags: []string{"home"}},
		{Title: "Buy milk at work", Tags: []string{"work"}},
		{Title: "Write report", Tags: []string{"work"}},
	}

	both := service.Filter(todos, "milk", "work")
	require.Len(t, both, 1)
	assert.Equal(t, "Buy milk at work", both[0].Title)
}

func TestFilter_MonotonicallyNonIncreasing(t *testing.T) {
	todos := []models.Todo{
		{Title: "Buy milk", Tags: []string{"home"}},
		{Title: "Buy milk again", Tags: []string{"home", "errands"}},
		{Title: "Write report", Description: "quarterly milk numbers", Tags: []string{"work"}},
	}

	all := len(service.Filter(todos, "", ""))
	byTerm := len(service.Filter(todos, "milk", ""))
	byBoth := len(service.Filter(todos, "milk", "home"))

	assert.LessOrEqual(t, byTerm, all)
	assert.LessOrEqual(t, byBoth, byTerm)
}

func TestPage_ClampsLimit(t *testing.T) {
	var gotLimit uint64
	repo := &mockFeedRepo{
		ListPublicFunc: func(_ context.Context, limit, offset uint64) ([]models.Todo, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	svc := service.NewFeedService(repo)

	_, err := svc.Page(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(service.DefaultFeedLimit), gotLimit)

	_, err = svc.Page(context.Background(), 500, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(service.MaxFeedLimit), gotLimit)

	_, err = svc.Page(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), gotLimit)
}

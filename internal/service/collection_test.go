package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/embercortex/embercortex/internal/domain"
	"github.com/embercortex/embercortex/internal/upstream/rag"
)

func TestCollectionService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("upstream success refreshes mirror", func(t *testing.T) {
		mockRAG := new(MockRAGClient)
		mockMirror := new(MockCollectionRepository)
		svc := NewCollectionService(mockRAG, nil, mockMirror)

		mockRAG.On("ListCollections", ctx).Return([]rag.CollectionInfo{
			{Name: "codebase", Count: 120, Metadata: rag.CollectionMetadata{Description: "Project sources"}},
			{Name: "docs", Count: 48},
		}, nil).Once()
		mockMirror.On("UpsertAll", ctx, mock.Anything).Return(nil).Once()

		collections, err := svc.List(ctx)

		require.NoError(t, err)
		require.Len(t, collections, 2)
		assert.Equal(t, "codebase", collections[0].Name)
		assert.Equal(t, "Project sources", collections[0].Description)
		assert.Equal(t, 120, collections[0].DocumentCount)
		assert.False(t, collections[0].LastSynced.IsZero())

		mockMirror.AssertExpectations(t)
	})

	t.Run("upstream failure falls back to mirror", func(t *testing.T) {
		mockRAG := new(MockRAGClient)
		mockMirror := new(MockCollectionRepository)
		svc := NewCollectionService(mockRAG, nil, mockMirror)

		mockRAG.On("ListCollections", ctx).Return(nil, errors.New("connection refused")).Once()
		mockMirror.On("List", ctx).Return([]domain.Collection{
			{Name: "codebase", DocumentCount: 120},
		}, nil).Once()

		collections, err := svc.List(ctx)

		require.NoError(t, err)
		require.Len(t, collections, 1)
		assert.Equal(t, "codebase", collections[0].Name)
	})

	t.Run("upstream failure with empty mirror surfaces the error", func(t *testing.T) {
		mockRAG := new(MockRAGClient)
		mockMirror := new(MockCollectionRepository)
		svc := NewCollectionService(mockRAG, nil, mockMirror)

		upstreamErr := errors.New("connection refused")
		mockRAG.On("ListCollections", ctx).Return(nil, upstreamErr).Once()
		mockMirror.On("List", ctx).Return([]domain.Collection{}, nil).Once()

		_, err := svc.List(ctx)
		assert.ErrorIs(t, err, upstreamErr)
	})

	t.Run("mirror refresh failure does not fail the listing", func(t *testing.T) {
		mockRAG := new(MockRAGClient)
		mockMirror := new(MockCollectionRepository)
		svc := NewCollectionService(mockRAG, nil, mockMirror)

		mockRAG.On("ListCollections", ctx).Return([]rag.CollectionInfo{
			{Name: "codebase", Count: 120},
		}, nil).Once()
		mockMirror.On("UpsertAll", ctx, mock.Anything).Return(errors.New("db closed")).Once()

		collections, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, collections, 1)
	})
}

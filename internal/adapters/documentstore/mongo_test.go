package documentstore_test

import (
	"testing"

	"github.com/Amund211/gamenight/internal/adapters/documentstore"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get", func(mt *mtest.T) {
		store := documentstore.NewMongo(mt.DB)

		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.players", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "p1"},
			{Key: "name", Value: "Ada"},
			{Key: "career", Value: bson.D{{Key: "goals", Value: int32(4)}}},
		}))

		var doc testDocument
		err := store.Get(mt.Context(), "players", "p1", &doc)
		require.NoError(mt, err)
		require.Equal(mt, testDocument{Name: "Ada", Career: career{Goals: 4}}, doc)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		store := documentstore.NewMongo(mt.DB)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.players", mtest.FirstBatch))

		var doc testDocument
		err := store.Get(mt.Context(), "players", "p1", &doc)
		require.ErrorIs(mt, err, documentstore.ErrNotFound)
	})

	mt.Run("get error", func(mt *mtest.T) {
		store := documentstore.NewMongo(mt.DB)

		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
		}))

		var doc testDocument
		err := store.Get(mt.Context(), "players", "p1", &doc)
		require.Error(mt, err)
		require.NotErrorIs(mt, err, documentstore.ErrNotFound)
	})

	mt.Run("create", func(mt *mtest.T) {
		store := documentstore.NewMongo(mt.DB)

		mt.AddMockResponses(mtest.CreateSuccessResponse())
		err := store.Create(mt.Context(), "players", "p1", testDocument{Name: "Ada"})
		require.NoError(mt, err)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		store := documentstore.NewMongo(mt.DB)

		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		err := store.Create(mt.Context(), "players", "p1", testDocument{Name: "Ada"})
		require.ErrorIs(mt, err, documentstore.ErrAlreadyExists)
	})

	mt.Run("put", func(mt *mtest.T) {
		store := documentstore.NewMongo(mt.DB)

		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 1},
			{Key: "nModified", Value: 1},
		})
		err := store.Put(mt.Context(), "players", "p1", testDocument{Name: "Ada"})
		require.NoError(mt, err)
	})

	mt.Run("delete", func(mt *mtest.T) {
		store := documentstore.NewMongo(mt.DB)

		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}})
		require.NoError(mt, store.Delete(mt.Context(), "players", "p1"))

		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})
		require.ErrorIs(mt, store.Delete(mt.Context(), "players", "p1"), documentstore.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		store := documentstore.NewMongo(mt.DB)

		first := mtest.CreateCursorResponse(1, "test.players", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "p0"}, {Key: "name", Value: "Grace"}},
			bson.D{{Key: "_id", Value: "p1"}, {Key: "name", Value: "Ada"}},
		)
		killCursors := mtest.CreateCursorResponse(0, "test.players", mtest.NextBatch)
		mt.AddMockResponses(first, killCursors)

		documents, err := store.List(mt.Context(), "players")
		require.NoError(mt, err)
		require.Len(mt, documents, 2)
		require.Equal(mt, "p0", documents[0].ID)

		var doc testDocument
		require.NoError(mt, documents[1].Decode(&doc))
		require.Equal(mt, "Ada", doc.Name)
	})

	mt.Run("increment", func(mt *mtest.T) {
		store := documentstore.NewMongo(mt.DB)

		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})
		err := store.Increment(mt.Context(), "players", "p1", map[string]int{"career.goals": 2})
		require.NoError(mt, err)

		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})
		err = store.Increment(mt.Context(), "players", "missing", map[string]int{"career.goals": 2})
		require.ErrorIs(mt, err, documentstore.ErrNotFound)
	})
}

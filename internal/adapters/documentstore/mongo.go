package documentstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Amund211/gamenight/internal/reporting"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const idField = "_id"

// Mongo stores every collection as a mongo collection with the document id as _id
type Mongo struct {
	db *mongo.Database

	tracer trace.Tracer
}

func NewMongo(db *mongo.Database) *Mongo {
	tracer := otel.Tracer("gamenight/documentstore/mongo")

	return &Mongo{
		db: db,

		tracer: tracer,
	}
}

// ConnectMongo connects to the server at uri and returns the named database
func ConnectMongo(ctx context.Context, uri, dbName string) (*mongo.Database, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client.Database(dbName), client.Disconnect, nil
}

func (m *Mongo) startSpan(ctx context.Context, name, collection string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("documentstore.collection", collection),
	))
}

// withID encodes the document and sets its _id
func withID(id string, doc any) (bson.D, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document fields: %w", err)
	}

	withID := make(bson.D, 0, len(fields)+1)
	withID = append(withID, bson.E{Key: idField, Value: id})
	for _, field := range fields {
		if field.Key == idField {
			continue
		}
		withID = append(withID, field)
	}
	return withID, nil
}

func (m *Mongo) Get(ctx context.Context, collection, id string, out any) error {
	ctx, span := m.startSpan(ctx, "Mongo.Get", collection)
	defer span.End()

	err := m.db.Collection(collection).FindOne(ctx, bson.D{{Key: idField, Value: id}}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		err := fmt.Errorf("failed to find document: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}

	return nil
}

func (m *Mongo) Create(ctx context.Context, collection, id string, doc any) error {
	ctx, span := m.startSpan(ctx, "Mongo.Create", collection)
	defer span.End()

	fields, err := withID(id, doc)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}

	_, err = m.db.Collection(collection).InsertOne(ctx, fields)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		err := fmt.Errorf("failed to insert document: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}

	return nil
}

func (m *Mongo) Put(ctx context.Context, collection, id string, doc any) error {
	ctx, span := m.startSpan(ctx, "Mongo.Put", collection)
	defer span.End()

	fields, err := withID(id, doc)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}

	_, err = m.db.Collection(collection).ReplaceOne(
		ctx,
		bson.D{{Key: idField, Value: id}},
		fields,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		err := fmt.Errorf("failed to replace document: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}

	return nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	ctx, span := m.startSpan(ctx, "Mongo.Delete", collection)
	defer span.End()

	result, err := m.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: idField, Value: id}})
	if err != nil {
		err := fmt.Errorf("failed to delete document: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (m *Mongo) List(ctx context.Context, collection string) ([]Document, error) {
	ctx, span := m.startSpan(ctx, "Mongo.List", collection)
	defer span.End()

	cursor, err := m.db.Collection(collection).Find(
		ctx,
		bson.D{},
		options.Find().SetSort(bson.D{{Key: idField, Value: 1}}),
	)
	if err != nil {
		err := fmt.Errorf("failed to find documents: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
		})
		return nil, err
	}
	defer cursor.Close(ctx)

	documents := []Document{}
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)

		id, ok := raw.Lookup(idField).StringValueOK()
		if !ok {
			err := fmt.Errorf("document has no string _id")
			reporting.Report(ctx, err, map[string]string{
				"collection": collection,
			})
			return nil, err
		}

		documents = append(documents, Document{
			ID: id,
			decode: func(out any) error {
				return bson.Unmarshal(raw, out)
			},
		})
	}
	if err := cursor.Err(); err != nil {
		err := fmt.Errorf("failed to iterate documents: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
		})
		return nil, err
	}

	return documents, nil
}

func (m *Mongo) Increment(ctx context.Context, collection, id string, deltas map[string]int) error {
	ctx, span := m.startSpan(ctx, "Mongo.Increment", collection)
	defer span.End()

	if len(deltas) == 0 {
		return nil
	}

	inc := bson.D{}
	for field, delta := range deltas {
		inc = append(inc, bson.E{Key: field, Value: delta})
	}

	result, err := m.db.Collection(collection).UpdateOne(
		ctx,
		bson.D{{Key: idField, Value: id}},
		bson.D{{Key: "$inc", Value: inc}},
	)
	if err != nil {
		err := fmt.Errorf("failed to increment fields: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

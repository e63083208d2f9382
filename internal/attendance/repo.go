package attendance

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studentattendance/internal/repository"
)

// recordDoc is the stored shape of a Record.
type recordDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	StudentID int64              `bson:"student_id"`
	Day       string             `bson:"day"`
	Present   bool               `bson:"present"`
}

func (d recordDoc) record() Record {
	return Record{ID: d.ID.Hex(), StudentID: d.StudentID, Day: d.Day, Present: d.Present}
}

// MongoRepository persists attendance records in a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a repo.
func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// EnsureIndexes creates the student_id index used by filters and counts.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "student_id", Value: 1}},
	})
	return err
}

// Insert writes a new record and fills in its id.
func (r *MongoRepository) Insert(ctx context.Context, rec *Record) error {
	res, err := r.coll.InsertOne(ctx, recordDoc{
		StudentID: rec.StudentID,
		Day:       rec.Day,
		Present:   rec.Present,
	})
	if err != nil {
		return err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("unexpected inserted id type")
	}
	rec.ID = oid.Hex()
	return nil
}

// List returns records in natural order, optionally for one student.
func (r *MongoRepository) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	filter := bson.M{}
	if opts.StudentID != nil {
		filter["student_id"] = *opts.StudentID
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetLimit(int64(opts.Limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []recordDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	res := make([]Record, 0, len(docs))
	for _, d := range docs {
		res = append(res, d.record())
	}
	return res, nil
}

// Get returns a single record by id.
func (r *MongoRepository) Get(ctx context.Context, id string) (*Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc recordDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	rec := doc.record()
	return &rec, nil
}

// Replace overwrites student_id, day and present and reloads the stored
// document into rec.
func (r *MongoRepository) Replace(ctx context.Context, rec *Record) error {
	oid, err := primitive.ObjectIDFromHex(rec.ID)
	if err != nil {
		return repository.ErrNotFound
	}
	update := bson.M{"$set": bson.M{
		"student_id": rec.StudentID,
		"day":        rec.Day,
		"present":    rec.Present,
	}}
	var doc recordDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return notFound(err)
	}
	*rec = doc.record()
	return nil
}

// Delete removes a record and returns what was removed.
func (r *MongoRepository) Delete(ctx context.Context, id string) (*Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc recordDoc
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	rec := doc.record()
	return &rec, nil
}

// CountByStudent counts every record of a student.
func (r *MongoRepository) CountByStudent(ctx context.Context, studentID int64) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"student_id": studentID})
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

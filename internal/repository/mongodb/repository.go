package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
)

const (
	rollsCollection    = "rolls"
	countersCollection = "counters"
	reportsCollection  = "statistics_reports"

	rollsCounterID = "rolls"
)

// MongoDBRepository stores rolls and statistics reports in MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

type rollDocument struct {
	ID          int64      `bson:"_id"`
	Length      float64    `bson:"length"`
	Weight      float64    `bson:"weight"`
	AddedDate   time.Time  `bson:"added_date"`
	DeletedDate *time.Time `bson:"deleted_date"`
}

type counterDocument struct {
	Seq int64 `bson:"seq"`
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{client: client, dbName: dbName, logger: logger}

	_, err = repo.collection(rollsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "added_date", Value: 1}}},
		{Keys: bson.D{{Key: "deleted_date", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create roll indexes: %w", err)
	}

	logger.Info("mongodb repository ready", zap.String("db", dbName))
	return repo, nil
}

// Add assigns the next id from the counters collection and inserts the roll.
func (r *MongoDBRepository) Add(ctx context.Context, roll models.Roll) (models.Roll, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return models.Roll{}, err
	}
	roll.ID = id

	if _, err := r.collection(rollsCollection).InsertOne(ctx, toDocument(roll)); err != nil {
		return models.Roll{}, fmt.Errorf("failed to insert roll: %w", err)
	}
	return fromDocument(toDocument(roll)), nil
}

// GetByID retrieves a roll by id.
func (r *MongoDBRepository) GetByID(ctx context.Context, id int64) (models.Roll, error) {
	var doc rollDocument
	err := r.collection(rollsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Roll{}, fmt.Errorf("%w: id %d", models.ErrRollNotFound, id)
	}
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to find roll: %w", err)
	}
	return fromDocument(doc), nil
}

// Update replaces an existing roll document.
func (r *MongoDBRepository) Update(ctx context.Context, roll models.Roll) (models.Roll, error) {
	doc := toDocument(roll)
	result, err := r.collection(rollsCollection).ReplaceOne(ctx, bson.M{"_id": roll.ID}, doc)
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to replace roll: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.Roll{}, fmt.Errorf("%w: id %d", models.ErrRollNotFound, roll.ID)
	}
	return fromDocument(doc), nil
}

// GetAll pushes the filter down as a query document, ordered by id.
func (r *MongoDBRepository) GetAll(ctx context.Context, f *models.RollFilter) ([]models.Roll, error) {
	return r.find(ctx, buildFilter(f))
}

// Snapshot returns every roll, ordered by id.
func (r *MongoDBRepository) Snapshot(ctx context.Context) ([]models.Roll, error) {
	return r.find(ctx, bson.M{})
}

// SaveReport saves a statistics report to the database.
func (r *MongoDBRepository) SaveReport(ctx context.Context, report models.StatisticsReport) error {
	_, err := r.collection(reportsCollection).InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to insert statistics report: %w", err)
	}
	return nil
}

// ListReports returns the latest reports, newest first.
func (r *MongoDBRepository) ListReports(ctx context.Context, limit int) ([]models.StatisticsReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection(reportsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics reports: %w", err)
	}

	reports := make([]models.StatisticsReport, 0)
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode statistics reports: %w", err)
	}
	return reports, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

func (r *MongoDBRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDocument
	err := r.collection(countersCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": rollsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate roll id: %w", err)
	}
	return counter.Seq, nil
}

func (r *MongoDBRepository) find(ctx context.Context, query bson.M) ([]models.Roll, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection(rollsCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query rolls: %w", err)
	}

	var docs []rollDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode rolls: %w", err)
	}

	rolls := make([]models.Roll, 0, len(docs))
	for _, doc := range docs {
		rolls = append(rolls, fromDocument(doc))
	}
	return rolls, nil
}

// buildFilter translates a RollFilter into a query document. A comparison
// operator never matches a null deleted_date, so deleted-date bounds only
// select deleted rolls.
func buildFilter(f *models.RollFilter) bson.M {
	if f.IsEmpty() {
		return bson.M{}
	}

	var conds []bson.M
	add := func(cond bson.M) {
		if cond != nil {
			conds = append(conds, cond)
		}
	}

	add(rangeCond("_id", f.IDRange, func(v int64) any { return v }))
	add(rangeCond("length", f.LengthRange, func(v float64) any { return v }))
	add(rangeCond("weight", f.WeightRange, func(v float64) any { return v }))
	add(rangeCond("added_date", f.AddedDateRange, func(v time.Time) any { return toMillis(v) }))
	add(rangeCond("deleted_date", f.DeletedDateRange, func(v time.Time) any { return toMillis(v) }))

	if f.IsDeleted != nil {
		if *f.IsDeleted {
			add(bson.M{"deleted_date": bson.M{"$ne": nil}})
		} else {
			add(bson.M{"deleted_date": nil})
		}
	}

	if len(conds) == 1 {
		return conds[0]
	}
	return bson.M{"$and": conds}
}

func rangeCond[T any](field string, rng models.RangeFilter[T], bind func(T) any) bson.M {
	ops := bson.M{}
	if from, ok := rng.From.Value(); ok {
		ops["$gte"] = bind(from)
	}
	if to, ok := rng.To.Value(); ok {
		ops["$lte"] = bind(to)
	}
	if len(ops) == 0 {
		return nil
	}
	return bson.M{field: ops}
}

// MongoDB keeps millisecond precision; truncating on the way in keeps the
// returned roll identical to what a later read produces.
func toDocument(roll models.Roll) rollDocument {
	doc := rollDocument{
		ID:        roll.ID,
		Length:    roll.Length,
		Weight:    roll.Weight,
		AddedDate: toMillis(roll.AddedDate),
	}
	if at, ok := roll.DeletedDate(); ok {
		deleted := toMillis(at)
		doc.DeletedDate = &deleted
	}
	return doc
}

// toMillis is applied to stored dates and filter bounds alike, so a bound
// taken from a roll's own timestamp still selects that roll.
func toMillis(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

func fromDocument(doc rollDocument) models.Roll {
	roll := models.Roll{
		ID:        doc.ID,
		Length:    doc.Length,
		Weight:    doc.Weight,
		AddedDate: doc.AddedDate.UTC(),
		State:     models.Active(),
	}
	if doc.DeletedDate != nil {
		roll.State = models.DeletedAt(doc.DeletedDate.UTC())
	}
	return roll
}

package property

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evcraddock/realty/internal/apperr"
)

// MongoStore keeps properties in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore wraps coll and makes sure the slug index exists.
func NewMongoStore(ctx context.Context, coll *mongo.Collection) (*MongoStore, error) {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "recommend", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating property indexes: %w", err)
	}
	return &MongoStore{coll: coll}, nil
}

// document is the stored shape of a property.
type document struct {
	ID             primitive.ObjectID    `bson:"_id"`
	Slug           string                `bson:"slug"`
	Title          string                `bson:"title"`
	Description    string                `bson:"description"`
	Overview       string                `bson:"overview"`
	Developer      string                `bson:"developer"`
	PropertyType   string                `bson:"propertyType"`
	Location       string                `bson:"location"`
	Address        Address               `bson:"address"`
	Price          string                `bson:"price"`
	Area           string                `bson:"area"`
	AreaUnit       string                `bson:"areaUnit"`
	Configuration  []string              `bson:"configuration"`
	Configurations []ConfigurationDetail `bson:"configurations"`
	Recommend      bool                  `bson:"recommend"`
	Featured       bool                  `bson:"featured"`
	NewProperty    bool                  `bson:"newProperty"`
	Resale         bool                  `bson:"resale"`
	Possession     string                `bson:"possession"`
	PossessionDate string                `bson:"possessionDate"`
	Images         []string              `bson:"images"`
	Features       []string              `bson:"features"`
	CreatedAt      time.Time             `bson:"createdAt"`
	UpdatedAt      time.Time             `bson:"updatedAt"`
}

func toDocument(p *Property) (document, error) {
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return document{}, fmt.Errorf("property id %q: %w", p.ID, apperr.ErrInvalidID)
	}
	p.normalize()
	return document{
		ID: oid, Slug: p.Slug, Title: p.Title, Description: p.Description, Overview: p.Overview,
		Developer: p.Developer, PropertyType: p.PropertyType, Location: p.Location, Address: p.Address,
		Price: p.Price, Area: p.Area, AreaUnit: p.AreaUnit,
		Configuration: p.Configuration, Configurations: p.Configurations,
		Recommend: p.Recommend, Featured: p.Featured, NewProperty: p.NewProperty, Resale: p.Resale,
		Possession: p.Possession, PossessionDate: p.PossessionDate,
		Images: p.Images, Features: p.Features,
		CreatedAt: p.CreatedAt.UTC(), UpdatedAt: p.UpdatedAt.UTC(),
	}, nil
}

func (d document) property() *Property {
	p := &Property{
		ID: d.ID.Hex(), Slug: d.Slug, Title: d.Title, Description: d.Description, Overview: d.Overview,
		Developer: d.Developer, PropertyType: d.PropertyType, Location: d.Location, Address: d.Address,
		Price: d.Price, Area: d.Area, AreaUnit: d.AreaUnit,
		Configuration: d.Configuration, Configurations: d.Configurations,
		Recommend: d.Recommend, Featured: d.Featured, NewProperty: d.NewProperty, Resale: d.Resale,
		Possession: d.Possession, PossessionDate: d.PossessionDate,
		Images: d.Images, Features: d.Features,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
	p.normalize()
	return p
}

// Insert adds a new property.
func (s *MongoStore) Insert(ctx context.Context, p *Property) error {
	doc, err := toDocument(p)
	if err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting property: %w", translateMongoErr(err))
	}
	return nil
}

// GetByID returns a property by its ObjectID hex string.
func (s *MongoStore) GetByID(ctx context.Context, id string) (*Property, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("property id %q: %w", id, apperr.ErrInvalidID)
	}
	return s.findOne(ctx, bson.M{"_id": oid}, "id "+id)
}

// GetBySlug returns a property by its slug.
func (s *MongoStore) GetBySlug(ctx context.Context, slug string) (*Property, error) {
	return s.findOne(ctx, bson.M{"slug": slug}, "slug "+slug)
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M, what string) (*Property, error) {
	var doc document
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("property %s: %w", what, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %s: %w", what, err)
	}
	return doc.property(), nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// List returns every property, newest first.
func (s *MongoStore) List(ctx context.Context) ([]*Property, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

// ListRecommended returns recommended properties other than excludeID.
func (s *MongoStore) ListRecommended(ctx context.Context, excludeID string, limit int) ([]*Property, error) {
	filter := bson.M{"recommend": true}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	return s.find(ctx, filter, options.Find().SetSort(newestFirst).SetLimit(int64(limit)))
}

func (s *MongoStore) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*Property, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding properties: %w", err)
	}
	props := make([]*Property, 0, len(docs))
	for _, d := range docs {
		props = append(props, d.property())
	}
	return props, nil
}

// Replace overwrites an existing property document.
func (s *MongoStore) Replace(ctx context.Context, p *Property) error {
	doc, err := toDocument(p)
	if err != nil {
		return err
	}
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("updating property: %w", translateMongoErr(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("property %s: %w", p.ID, apperr.ErrNotFound)
	}
	return nil
}

// Delete removes a property by ID.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("property id %q: %w", id, apperr.ErrInvalidID)
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("property %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// SuggestPrefix runs an anchored case-insensitive regex over the label fields.
func (s *MongoStore) SuggestPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	re := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(prefix)), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": re},
		bson.M{"developer": re},
		bson.M{"location": re},
		bson.M{"address.city": re},
	}}
	opts := options.Find().
		SetProjection(bson.M{"title": 1, "developer": 1, "location": 1, "address.city": 1}).
		SetSort(newestFirst).
		SetLimit(int64(limit * 4))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying suggestions: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	c := newPrefixCollector(prefix, limit)
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding suggestion: %w", err)
		}
		if c.add(suggestFields(doc.property())...) {
			break
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating suggestions: %w", err)
	}
	return c.out, nil
}

func translateMongoErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%v: %w", err, apperr.ErrConflict)
	}
	return err
}

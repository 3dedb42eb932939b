package repository

import (
	"context"
	"time"

	"github.com/securedocs/securedocs/backend/go-services/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements the registry on a MongoDB collection. Every mutation is
// a single conditional update, so preconditions (membership, duplicate guards)
// hold at commit time even when another caller committed in between.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// documents are looked up by their client-generated id
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.AllowedSigners == nil {
		doc.AllowedSigners = []string{}
	}
	if doc.Signatures == nil {
		doc.Signatures = []string{}
	}
	_, err := m.col.InsertOne(ctx, doc)
	return err
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	if err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, document.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) ListBySigner(ctx context.Context, identity string) ([]*document.Document, error) {
	cur, err := m.col.Find(ctx, bson.M{"allowedSigners": document.NormalizeIdentity(identity)})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (m *MongoRepo) AddSigner(ctx context.Context, id, identity string) (*document.Document, error) {
	identity = document.NormalizeIdentity(identity)
	if identity == "" {
		return nil, document.ErrValidation
	}
	filter := bson.M{"id": id, "allowedSigners": bson.M{"$ne": identity}}
	update := bson.M{"$push": bson.M{"allowedSigners": identity}}
	d, err := m.findOneAndUpdate(ctx, filter, update)
	if err == nil {
		return d, nil
	}
	if err != document.ErrNotFound {
		return nil, err
	}
	// distinguish a missing document from a duplicate member
	cur, gerr := m.Get(ctx, id)
	if gerr != nil {
		return nil, gerr
	}
	if cur.IsAuthorized(identity) {
		return nil, document.ErrDuplicateMember
	}
	return nil, err
}

func (m *MongoRepo) RemoveSigner(ctx context.Context, id, identity string) (*document.Document, error) {
	// pulls only from allowedSigners; recorded signatures are retained
	filter := bson.M{"id": id}
	update := bson.M{"$pull": bson.M{"allowedSigners": document.NormalizeIdentity(identity)}}
	return m.findOneAndUpdate(ctx, filter, update)
}

func (m *MongoRepo) Sign(ctx context.Context, id, identity string) (*document.Document, error) {
	identity = document.NormalizeIdentity(identity)
	if identity == "" {
		return nil, document.ErrValidation
	}
	filter := bson.M{
		"id":             id,
		"allowedSigners": identity,
		"signatures":     bson.M{"$ne": identity},
	}
	update := bson.M{"$push": bson.M{"signatures": identity}}
	d, err := m.findOneAndUpdate(ctx, filter, update)
	if err == nil {
		return d, nil
	}
	if err != document.ErrNotFound {
		return nil, err
	}
	cur, gerr := m.Get(ctx, id)
	if gerr != nil {
		return nil, gerr
	}
	return nil, classifySignFailure(cur, identity)
}

// classifySignFailure decides why a conditional sign update matched nothing.
// Authorization is checked first: an identity that signed and was later
// removed from the roster is unauthorized, not a duplicate.
func classifySignFailure(d *document.Document, identity string) error {
	if !d.IsAuthorized(identity) {
		return document.ErrNotAuthorized
	}
	if d.HasSigned(identity) {
		return document.ErrDuplicateSignature
	}
	return document.ErrNotFound
}

func (m *MongoRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*document.Document, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d document.Document
	if err := m.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, document.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

package signers

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileRepository defines persistence operations for signer profiles.
type ProfileRepository interface {
	UpsertByAddress(ctx context.Context, p *Profile) (*Profile, error)
	GetByAddress(ctx context.Context, address string) (*Profile, error)
}

// MongoProfileRepository implements ProfileRepository using MongoDB.
type MongoProfileRepository struct {
	col *mongo.Collection
}

func NewMongoProfileRepository(col *mongo.Collection) *MongoProfileRepository {
	return &MongoProfileRepository{col: col}
}

func (r *MongoProfileRepository) UpsertByAddress(ctx context.Context, p *Profile) (*Profile, error) {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	filter := bson.M{"address": p.Address}
	repl := bson.M{"$set": bson.M{
		"name":      p.Name,
		"email":     p.Email,
		"updatedAt": p.UpdatedAt,
		"createdAt": p.CreatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated Profile
	if err := r.col.FindOneAndUpdate(ctx, filter, repl, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return p, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoProfileRepository) GetByAddress(ctx context.Context, address string) (*Profile, error) {
	var p Profile
	if err := r.col.FindOne(ctx, bson.M{"address": address}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// MemoryProfileRepository is the in-process variant for the dev server and tests.
type MemoryProfileRepository struct {
	mu    sync.RWMutex
	store map[string]Profile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{store: make(map[string]Profile)}
}

func (r *MemoryProfileRepository) UpsertByAddress(ctx context.Context, p *Profile) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.store[p.Address]; ok {
		p.CreatedAt = existing.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.store[p.Address] = *p
	cp := *p
	return &cp, nil
}

func (r *MemoryProfileRepository) GetByAddress(ctx context.Context, address string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.store[address]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

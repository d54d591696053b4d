package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/mockorbit/interviewd/internal/store"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config represents the MongoDB store config structure.
type Config struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Mongo reads interview records written by the REST API.
type Mongo struct {
	cfg    Config
	client *mongo.Client
	coll   *mongo.Collection
}

type interviewDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	InterviewerID primitive.ObjectID `bson:"interviewer_id"`
	IntervieweeID primitive.ObjectID `bson:"interviewee_id"`
	Status        string             `bson:"status"`
}

// New connects and pings the primary.
func New(ctx context.Context, cfg Config) (*Mongo, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Collection == "" {
		cfg.Collection = "interviews"
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	log.Info().Str("module", "store.mongo").Str("database", cfg.Database).Str("collection", cfg.Collection).Msg("connected")
	return &Mongo{
		cfg:    cfg,
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// GetInterview gets an interview by its ObjectID hex.
func (m *Mongo) GetInterview(ctx context.Context, id domain.RoomID) (domain.Interview, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return domain.Interview{}, store.ErrInterviewNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	var doc interviewDoc
	if err := m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Interview{}, store.ErrInterviewNotFound
		}
		return domain.Interview{}, fmt.Errorf("finding interview %s: %w", id, err)
	}
	return domain.Interview{
		ID:          id,
		Interviewer: domain.UserID(doc.InterviewerID.Hex()),
		Interviewee: domain.UserID(doc.IntervieweeID.Hex()),
		Status:      domain.InterviewStatus(doc.Status),
	}, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

package memory

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"conduit/internal/domain"
)

const (
	ToolStore    = "store"
	ToolRetrieve = "retrieve"
)

var bucketName = []byte("memory")

// Strategy implements the memory identity: a small durable key/value store
// backed by bbolt. The database handle is owned by the caller and closed at
// shutdown.
type Strategy struct {
	db *bolt.DB
}

// Open creates the store file (and its bucket) at path.
func Open(path string) (*Strategy, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init memory store: %w", err)
	}
	return &Strategy{db: db}, nil
}

func (s *Strategy) Close() error {
	return s.db.Close()
}

func (s *Strategy) Discover(_ *domain.ServerConnection) []domain.Tool {
	return []domain.Tool{
		{Name: ToolStore, Description: "Store a value under a key"},
		{Name: ToolRetrieve, Description: "Retrieve a previously stored value"},
	}
}

func (s *Strategy) Execute(ctx context.Context, req domain.ExecutionRequest, _ *domain.ServerConnection) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, _ := req.Args["key"].(string)
	if key == "" {
		return nil, fmt.Errorf("missing required argument %q", "key")
	}

	switch req.Tool {
	case ToolStore:
		return s.store(key, req.Args["value"])
	case ToolRetrieve:
		return s.retrieve(key)
	default:
		return nil, fmt.Errorf("unsupported memory tool %q", req.Tool)
	}
}

func (s *Strategy) store(key string, value any) (map[string]any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), encoded)
	})
	if err != nil {
		return nil, fmt.Errorf("store %q: %w", key, err)
	}

	return map[string]any{
		"key":    key,
		"stored": true,
	}, nil
}

func (s *Strategy) retrieve(key string) (map[string]any, error) {
	var encoded []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket(bucketName).Get([]byte(key)); raw != nil {
			encoded = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve %q: %w", key, err)
	}
	if encoded == nil {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	var value any
	if err := json.Unmarshal(encoded, &value); err != nil {
		return nil, fmt.Errorf("decode value for %q: %w", key, err)
	}

	return map[string]any{
		"key":   key,
		"value": value,
	}, nil
}

var _ domain.Strategy = (*Strategy)(nil)

package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
	"github.com/mamadbah2/steelrolls/internal/service/filter"
)

var (
	rollPrefix  = []byte("roll:")
	sequenceKey = []byte("seq:rolls")
)

// Config holds BadgerDB configuration.
type Config struct {
	// Path to store database files
	Path string

	// InMemory mode (for testing)
	InMemory bool
}

// RollRepository stores rolls in BadgerDB, keyed by big-endian id so that
// iteration order is id order.
type RollRepository struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *zap.Logger
}

// NewRollRepository opens a BadgerDB-backed roll store.
func NewRollRepository(cfg Config, logger *zap.Logger) (*RollRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path := cfg.Path
	if cfg.InMemory {
		// badger refuses a directory in memory mode
		path = ""
	}

	opts := badger.DefaultOptions(path).
		WithInMemory(cfg.InMemory).
		WithCompression(options.Snappy).
		WithNumVersionsToKeep(1).
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	seq, err := db.GetSequence(sequenceKey, 100)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to lease id sequence: %w", err)
	}

	logger.Info("badger repository ready", zap.String("path", cfg.Path), zap.Bool("in_memory", cfg.InMemory))
	return &RollRepository{db: db, seq: seq, logger: logger}, nil
}

// Add stores a new roll under the next sequence id.
func (r *RollRepository) Add(ctx context.Context, roll models.Roll) (models.Roll, error) {
	if err := ctx.Err(); err != nil {
		return models.Roll{}, err
	}

	next, err := r.seq.Next()
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to allocate roll id: %w", err)
	}
	// badger sequences start at zero
	roll.ID = int64(next) + 1

	value, err := json.Marshal(roll.ToDTO())
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to encode roll: %w", err)
	}

	if err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(rollKey(roll.ID), value)
	}); err != nil {
		return models.Roll{}, fmt.Errorf("failed to write roll: %w", err)
	}
	return roll, nil
}

// GetByID retrieves a roll by id.
func (r *RollRepository) GetByID(ctx context.Context, id int64) (models.Roll, error) {
	if err := ctx.Err(); err != nil {
		return models.Roll{}, err
	}

	var roll models.Roll
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rollKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			roll, err = decodeRoll(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Roll{}, fmt.Errorf("%w: id %d", models.ErrRollNotFound, id)
	}
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to read roll: %w", err)
	}
	return roll, nil
}

// Update overwrites an existing roll.
func (r *RollRepository) Update(ctx context.Context, roll models.Roll) (models.Roll, error) {
	if err := ctx.Err(); err != nil {
		return models.Roll{}, err
	}

	value, err := json.Marshal(roll.ToDTO())
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to encode roll: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		key := rollKey(roll.ID)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Set(key, value)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Roll{}, fmt.Errorf("%w: id %d", models.ErrRollNotFound, roll.ID)
	}
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to update roll: %w", err)
	}
	return roll, nil
}

// GetAll scans the store and applies f in memory.
func (r *RollRepository) GetAll(ctx context.Context, f *models.RollFilter) ([]models.Roll, error) {
	snapshot, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(snapshot, f), nil
}

// Snapshot returns every roll, ordered by id.
func (r *RollRepository) Snapshot(ctx context.Context) ([]models.Roll, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rolls := make([]models.Roll, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = rollPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		var iterCount int
		for it.Rewind(); it.Valid(); it.Next() {
			iterCount++
			if iterCount%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			if err := it.Item().Value(func(val []byte) error {
				roll, err := decodeRoll(val)
				if err != nil {
					return err
				}
				rolls = append(rolls, roll)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rolls: %w", err)
	}
	return rolls, nil
}

// RunGC runs BadgerDB's value log garbage collection.
// badger.ErrNoRewrite means there was nothing to reclaim and is not an error.
func (r *RollRepository) RunGC(discardRatio float64) error {
	err := r.db.RunValueLogGC(discardRatio)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

// Close releases the id lease and shuts down BadgerDB cleanly.
func (r *RollRepository) Close(ctx context.Context) error {
	if err := r.seq.Release(); err != nil {
		r.logger.Warn("failed to release id sequence", zap.Error(err))
	}
	return r.db.Close()
}

func rollKey(id int64) []byte {
	key := make([]byte, len(rollPrefix)+8)
	copy(key, rollPrefix)
	binary.BigEndian.PutUint64(key[len(rollPrefix):], uint64(id))
	return key
}

func decodeRoll(val []byte) (models.Roll, error) {
	var dto models.RollDTO
	if err := json.Unmarshal(val, &dto); err != nil {
		return models.Roll{}, fmt.Errorf("failed to decode roll: %w", err)
	}
	return models.FromDTO(dto), nil
}

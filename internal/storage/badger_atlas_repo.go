package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// ErrNotReady возвращается при обращении к закрытому хранилищу
var ErrNotReady = errors.New("storage is not ready")

// BadgerAtlasRepo хранит пиксели атласа в BadgerDB, значения сжаты zstd
type BadgerAtlasRepo struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewBadgerAtlasRepo открывает (или создаёт) кэш в каталоге dbPath
func NewBadgerAtlasRepo(dbPath string) (*BadgerAtlasRepo, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd decoder: %w", err)
	}

	return &BadgerAtlasRepo{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close закрывает хранилище данных
func (r *BadgerAtlasRepo) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.isReady {
		return nil
	}

	r.isReady = false
	r.decoder.Close()
	if err := r.encoder.Close(); err != nil {
		r.db.Close()
		return fmt.Errorf("ошибка закрытия zstd encoder: %w", err)
	}
	return r.db.Close()
}

// Load читает и распаковывает пиксели атласа
func (r *BadgerAtlasRepo) Load(ctx context.Context, stream []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.isReady {
		return nil, false, ErrNotReady
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(AtlasKey(stream)))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	pixels, err := r.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка распаковки записи атласа: %w", err)
	}
	return pixels, true, nil
}

// Store сжимает и сохраняет пиксели атласа
func (r *BadgerAtlasRepo) Store(ctx context.Context, stream []byte, pixels []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.isReady {
		return ErrNotReady
	}

	data := r.encoder.EncodeAll(pixels, nil)
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(AtlasKey(stream)), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// Delete удаляет запись атласа
func (r *BadgerAtlasRepo) Delete(ctx context.Context, stream []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.isReady {
		return ErrNotReady
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(AtlasKey(stream)))
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"sync"
)

// MemoryAtlasRepo реализует AtlasRepo в памяти.
// Используется в тестах и когда кэш на диске отключён в конфигурации.
type MemoryAtlasRepo struct {
	mu   sync.RWMutex
	data map[string][]byte // ключ AtlasKey -> пиксели
}

// NewMemoryAtlasRepo создает новый кэш атласа в памяти
func NewMemoryAtlasRepo() *MemoryAtlasRepo {
	return &MemoryAtlasRepo{
		data: make(map[string][]byte),
	}
}

// Load возвращает копию сохранённых пикселей
func (r *MemoryAtlasRepo) Load(ctx context.Context, stream []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	px, ok := r.data[AtlasKey(stream)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), px...), true, nil
}

// Store сохраняет копию пикселей
func (r *MemoryAtlasRepo) Store(ctx context.Context, stream []byte, pixels []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[AtlasKey(stream)] = append([]byte(nil), pixels...)
	return nil
}

// Delete удаляет запись
func (r *MemoryAtlasRepo) Delete(ctx context.Context, stream []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, AtlasKey(stream))
	return nil
}

// Len возвращает число записей
func (r *MemoryAtlasRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Close ничего не делает
func (r *MemoryAtlasRepo) Close() error {
	return nil
}

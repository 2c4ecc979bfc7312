package storage

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// AtlasRepo кэширует распакованные пиксели атласа тайлов.
// Ключом служит хэш сжатого файла тайлов, поэтому изменение файла
// автоматически даёт промах кэша.
type AtlasRepo interface {
	// Load возвращает пиксели для потока stream.
	// Возвращает:
	//   []byte - пиксели атласа
	//   bool - true если запись найдена
	//   error - ошибка чтения
	Load(ctx context.Context, stream []byte) ([]byte, bool, error)

	// Store сохраняет пиксели для потока stream
	Store(ctx context.Context, stream []byte, pixels []byte) error

	// Delete удаляет запись (например, если она повреждена)
	Delete(ctx context.Context, stream []byte) error

	// Close освобождает ресурсы хранилища
	Close() error
}

// AtlasKey возвращает ключ записи для сжатого потока тайлов
func AtlasKey(stream []byte) string {
	return fmt.Sprintf("atlas:%016x", xxhash.Sum64(stream))
}

// OpenAtlasRepo открывает кэш на диске в каталоге path.
// Если кэш выключен, возвращает NopAtlasRepo.
func OpenAtlasRepo(enabled bool, path string) (AtlasRepo, error) {
	if !enabled {
		return NopAtlasRepo{}, nil
	}
	return NewBadgerAtlasRepo(path)
}

// NopAtlasRepo - кэш, который ничего не хранит
type NopAtlasRepo struct{}

func (NopAtlasRepo) Load(context.Context, []byte) ([]byte, bool, error) { return nil, false, nil }
func (NopAtlasRepo) Store(context.Context, []byte, []byte) error        { return nil }
func (NopAtlasRepo) Delete(context.Context, []byte) error               { return nil }
func (NopAtlasRepo) Close() error                                       { return nil }

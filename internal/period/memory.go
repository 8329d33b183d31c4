package period

import "sync"

// MemoryStorage is an in-process Storage. Errors can be injected to exercise
// the storage failure paths.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]string

	GetErr error
	SetErr error
	DelErr error
	Writes int
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes++
	if m.DelErr != nil {
		return m.DelErr
	}
	delete(m.data, key)
	return nil
}

package tui

import "sync"

// MessageLog is a thread-safe circular buffer of host notification
// strings, shown at the bottom of every phase screen.
type MessageLog struct {
	entries []string
	size    int
	index   int
	count   int
	mutex   sync.RWMutex
}

// NewMessageLog creates a log keeping the last size messages.
func NewMessageLog(size int) *MessageLog {
	return &MessageLog{
		entries: make([]string, size),
		size:    size,
	}
}

// Add inserts a message, evicting the oldest if the buffer is full.
func (m *MessageLog) Add(msg string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.entries[m.index] = msg
	m.index = (m.index + 1) % m.size
	if m.count < m.size {
		m.count++
	}
}

// Recent returns up to maxCount messages, newest first.
func (m *MessageLog) Recent(maxCount int) []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	count := m.count
	if maxCount > 0 && maxCount < count {
		count = maxCount
	}
	result := make([]string, count)
	for i := 0; i < count; i++ {
		result[i] = m.entries[(m.index-1-i+m.size)%m.size]
	}
	return result
}

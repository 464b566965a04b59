package session

import "time"

// SetClock overrides the manager's clock for testing purposes.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// SetAfterFunc overrides timer creation for testing purposes.
func (m *Manager) SetAfterFunc(afterFunc func(time.Duration, func()) *time.Timer) {
	m.afterFunc = afterFunc
}

// TimerArmed reports whether a refresh timer is currently pending.
func (m *Manager) TimerArmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshTimer != nil
}

package scheduler

// GetScopeStatusMap returns a copy of the internal scope status map.
// This is exported for testing purposes only.
func (s *Scheduler) GetScopeStatusMap() map[string]ScopeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statusMap := make(map[string]ScopeStatus, len(s.scopes))
	for k, v := range s.scopes {
		statusMap[k] = v.status
	}
	return statusMap
}

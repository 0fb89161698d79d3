package store

// Subscribe returns a channel that receives the current snapshot immediately
// and every later snapshot. The channel holds one value; a slow reader only
// sees the latest state. Call the returned func to unsubscribe, which closes
// the channel.
func (s *ExpenseStore) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	// Holding mu keeps a concurrent Add from publishing between the initial
	// snapshot and registration.
	s.mu.Lock()
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- external(s.state.Load())
	s.subsMu.Unlock()
	s.mu.Unlock()

	var once bool
	cancel := func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if once {
			return
		}
		once = true
		delete(s.subs, id)
		close(ch)
	}
	return ch, cancel
}

// publish hands each subscriber its own copy of snap, replacing any value
// still buffered. Callers hold mu.
func (s *ExpenseStore) publish(snap *Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		out := external(snap)
		select {
		case ch <- out:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- out:
		default:
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (s *ExpenseStore) Subscribers() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}

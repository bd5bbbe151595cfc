package garages

import "time"

// Clock supplies the timestamps recorded on stays. Successive calls must not
// go backwards: history order is insertion order.
type Clock func() time.Time

type settings struct {
	clock Clock
}

type Option func(*settings)

func WithClock(clock Clock) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{clock: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

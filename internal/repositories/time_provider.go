package repositories

import "time"

//go:generate mockgen -destination=mocks/mock_time_provider.go -package=mocks -source=time_provider.go

// TimeProvider stamps records so tests can pin the clock
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider returns the current UTC time
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time { return time.Now().UTC() }

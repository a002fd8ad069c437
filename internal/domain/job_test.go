package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminal(t *testing.T) {
	assert.False(t, JobPending.Terminal())
	assert.False(t, JobRunning.Terminal())
	assert.True(t, JobCompleted.Terminal())
	assert.True(t, JobFailed.Terminal())
	assert.True(t, JobCancelled.Terminal())
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 100, Job{Status: JobCompleted}.Progress())

	assert.Equal(t, 0, Job{Status: JobRunning}.Progress())
	assert.Equal(t, 20, Job{Status: JobRunning, MaxLeads: 50, SuccessfulExtractions: 10}.Progress())

	// Once listings arrive they become the denominator.
	assert.Equal(t, 50, Job{
		Status: JobRunning, MaxLeads: 10,
		TotalListings: 40, SuccessfulExtractions: 20,
	}.Progress())

	// Never over 100 even when extraction outpaces the denominator.
	assert.Equal(t, 100, Job{
		Status: JobRunning, TotalListings: 5, SuccessfulExtractions: 50,
	}.Progress())
}

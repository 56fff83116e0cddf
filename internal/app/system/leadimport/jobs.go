package leadimport

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job holds parsed rows between the upload and its confirmation.
type Job struct {
	ID        string
	Owner     string // session id that uploaded the file
	Screen    string // registry key of the screen the upload came from
	Rows      []Row
	CreatedAt time.Time
}

// Jobs keeps pending imports in memory. A job is taken at most once.
type Jobs struct {
	mu   sync.Mutex
	ttl  time.Duration
	jobs map[string]Job
}

// NewJobs creates a holder whose unconfirmed jobs expire after ttl.
func NewJobs(ttl time.Duration) *Jobs {
	return &Jobs{ttl: ttl, jobs: make(map[string]Job)}
}

// Put stores rows and returns the new job.
func (j *Jobs) Put(owner, screen string, rows []Row) Job {
	job := Job{
		ID:        uuid.NewString(),
		Owner:     owner,
		Screen:    screen,
		Rows:      rows,
		CreatedAt: time.Now(),
	}
	j.mu.Lock()
	j.jobs[job.ID] = job
	j.mu.Unlock()
	return job
}

// Take removes and returns the job if it belongs to owner and screen.
func (j *Jobs) Take(id, owner, screen string) (Job, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	job, ok := j.jobs[id]
	if !ok || job.Owner != owner || job.Screen != screen {
		return Job{}, false
	}
	delete(j.jobs, id)
	if time.Since(job.CreatedAt) > j.ttl {
		return Job{}, false
	}
	return job, true
}

// Discard drops a job without running it.
func (j *Jobs) Discard(id, owner string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if job, ok := j.jobs[id]; ok && job.Owner == owner {
		delete(j.jobs, id)
	}
}

// Sweep removes expired jobs and returns how many were dropped.
func (j *Jobs) Sweep(now time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for id, job := range j.jobs {
		if now.Sub(job.CreatedAt) > j.ttl {
			delete(j.jobs, id)
			n++
		}
	}
	return n
}

// Len returns the number of pending jobs.
func (j *Jobs) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.jobs)
}

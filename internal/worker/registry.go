package worker

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Job is a periodic maintenance task. Run returns the number of rows it affected.
type Job interface {
	Name() string
	Run(ctx context.Context) (int64, error)
}

// Registry manages the registration and lookup of maintenance jobs
type Registry struct {
	jobs map[string]Job
}

// NewRegistry creates a new job registry
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]Job),
	}
}

// Register adds a job to the registry
// Names are normalized to lowercase; registering a name twice replaces the job
func (r *Registry) Register(job Job) {
	r.jobs[strings.ToLower(job.Name())] = job
}

// Get retrieves a job by name (case-insensitive)
func (r *Registry) Get(name string) (Job, error) {
	job, ok := r.jobs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", name)
	}
	return job, nil
}

// List returns all registered job names in order
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/williampepple1/classifieds-scraper/internal/scraper"
	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

// Pool downloads image tasks with a fixed number of goroutines
type Pool struct {
	Scraper   scraper.Scraper
	Workers   int
	Log       logrus.FieldLogger
	Jobs      chan models.ImageTask
	Results   chan string
	WaitGroup *sync.WaitGroup
}

// NewPool creates a new worker pool
func NewPool(s scraper.Scraper, workers int, log logrus.FieldLogger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		Scraper: s,
		Workers: workers,
		Log:     log,
	}
}

// Tasks assigns sequential file names (1.jpg, 2.jpg, ...) to the image URLs
func Tasks(urls []string, dir string) []models.ImageTask {
	tasks := make([]models.ImageTask, 0, len(urls))
	for i, u := range urls {
		tasks = append(tasks, models.ImageTask{
			URL:      u,
			Dir:      dir,
			Filename: fmt.Sprintf("%d.jpg", i+1),
		})
	}
	return tasks
}

// Run downloads all tasks and blocks until every worker is done.
// It returns the file names that were written; failed downloads are logged and dropped.
func (p *Pool) Run(ctx context.Context, tasks []models.ImageTask) []string {
	if len(tasks) == 0 {
		return nil
	}

	p.Jobs = make(chan models.ImageTask, len(tasks))
	p.Results = make(chan string, len(tasks))
	p.WaitGroup = &sync.WaitGroup{}

	p.Start(ctx)
	p.AddJobs(tasks)
	p.WaitGroup.Wait()
	close(p.Results)

	var saved []string
	for name := range p.Results {
		saved = append(saved, name)
	}
	return saved
}

// Start starts the workers
func (p *Pool) Start(ctx context.Context) {
	for w := 1; w <= p.Workers; w++ {
		p.WaitGroup.Add(1)
		go p.worker(ctx, w)
	}
}

// worker downloads tasks from the jobs channel and reports written file names
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.WaitGroup.Done()

	for task := range p.Jobs {
		if err := p.download(ctx, task); err != nil {
			p.Log.WithField("worker", id).Warnf("Image download failed: %s | %v", task.URL, err)
			continue
		}
		p.Results <- task.Filename
	}
}

func (p *Pool) download(ctx context.Context, task models.ImageTask) error {
	page, err := p.Scraper.Fetch(ctx, task.URL)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(task.Dir, task.Filename), page.Body, 0644)
}

// AddJobs queues the tasks and closes the jobs channel
func (p *Pool) AddJobs(tasks []models.ImageTask) {
	for _, task := range tasks {
		p.Jobs <- task
	}
	close(p.Jobs)
}

// Package downloader runs media downloads through a bounded worker pool.
// Pages are crawled strictly in order upstream; only the independent file
// fetches fan out here.
package downloader

import (
	"bytes"
	"io"
	"sync"
	"time"

	"weiboscraper/pkg/logger"
	"weiboscraper/pkg/ratelimit"
)

// MediaKind tells a worker which results subdirectory a file belongs in
type MediaKind int

const (
	KindImage MediaKind = iota
	KindVideo
)

// Subdir returns the results subdirectory for the kind
func (k MediaKind) Subdir() string {
	if k == KindVideo {
		return "videos"
	}
	return "images"
}

// Job is one file to download
type Job struct {
	URL      string
	Filename string
	Kind     MediaKind
	PostID   int64
}

// Result is the outcome of one job. Skipped means the file already existed
// and no network request was made.
type Result struct {
	Job      Job
	Success  bool
	Skipped  bool
	Error    error
	Duration time.Duration
	Size     int
}

// FileFetcher fetches one file's content
type FileFetcher interface {
	DownloadFile(url string) ([]byte, error)
}

// MediaStorage persists fetched files and answers idempotence checks
type MediaStorage interface {
	IsDownloaded(subdir, name string) bool
	SaveFile(subdir, name string, r io.Reader) error
}

// WorkerPool downloads media files concurrently
type WorkerPool struct {
	workers int
	fetcher FileFetcher
	store   MediaStorage
	limiter ratelimit.Limiter
	log     logger.Logger

	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
}

// NewWorkerPool creates a pool with the given number of workers
func NewWorkerPool(workers int, fetcher FileFetcher, store MediaStorage, limiter ratelimit.Limiter, log logger.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &WorkerPool{
		workers:     workers,
		fetcher:     fetcher,
		store:       store,
		limiter:     limiter,
		log:         log,
		jobQueue:    make(chan Job, workers*2),
		resultQueue: make(chan Result, workers*2),
	}
}

// Start launches the workers
func (p *WorkerPool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues a job. Blocks when the queue is full.
func (p *WorkerPool) Submit(job Job) {
	p.jobQueue <- job
}

// Results returns the channel of job outcomes
func (p *WorkerPool) Results() <-chan Result {
	return p.resultQueue
}

// Stop closes the job queue, waits for in-flight jobs to finish, and closes
// the result channel.
func (p *WorkerPool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		p.resultQueue <- p.process(job)
	}
}

// process downloads one file. Files already on disk are skipped before any
// network activity; one failed file never affects the rest of the batch.
func (p *WorkerPool) process(job Job) Result {
	start := time.Now()

	if p.store.IsDownloaded(job.Kind.Subdir(), job.Filename) {
		p.log.WithField("file", job.Filename).Debug("Already downloaded, skipping")
		return Result{Job: job, Success: true, Skipped: true, Duration: time.Since(start)}
	}

	if p.limiter != nil {
		p.limiter.Wait()
	}

	data, err := p.fetcher.DownloadFile(job.URL)
	if err != nil {
		return Result{Job: job, Error: err, Duration: time.Since(start)}
	}

	if err := p.store.SaveFile(job.Kind.Subdir(), job.Filename, bytes.NewReader(data)); err != nil {
		return Result{Job: job, Error: err, Duration: time.Since(start)}
	}

	return Result{Job: job, Success: true, Duration: time.Since(start), Size: len(data)}
}

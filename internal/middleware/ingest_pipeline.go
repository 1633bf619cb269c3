package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GridPull/internal/domain/models"
	domrepo "GridPull/internal/domain/repository"
	"GridPull/internal/service/ratelimit"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, o *models.PriceObservation) error
}

// IngestPipeline sits between the PJM feed and the storage backend. It
// validates rows, throttles per hub/market, and buffers when downstream
// is unavailable.
type IngestPipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	limiter *ratelimit.Limiter
	rate    float64 // observations per second per hub/market, 0 = unlimited
	burst   float64
	bufSize int
	bufCh   chan *models.PriceObservation
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
}

type PipelineOption func(*IngestPipeline)

// WithRate sets the per hub/market throttle in observations per second.
func WithRate(perSec, burst float64) PipelineOption {
	return func(p *IngestPipeline) {
		if perSec > 0 {
			p.rate = perSec
		}
		if burst > 0 {
			p.burst = burst
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewIngestPipeline creates a new pipeline.
func NewIngestPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		proc:    proc,
		metrics: metrics,
		limiter: ratelimit.New(),
		rate:    0, // PJM polling is bursty but bounded; unlimited by default
		burst:   200,
		bufSize: 1000,
		bufCh:   make(chan *models.PriceObservation, 1000),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.PriceObservation, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered observations.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case o := <-p.bufCh:
				if o == nil {
					continue
				}
				if err := p.proc.Process(ctx, o); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- o:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards the observation downstream,
// buffering on errors.
func (p *IngestPipeline) Process(ctx context.Context, o *models.PriceObservation) error {
	start := time.Now()
	if err := validateObservation(o); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.rate > 0 {
		key := o.Hub + "|" + string(o.Market)
		if !p.limiter.Allow(key, p.burst, p.rate) {
			// throttled; record and drop silently
			p.metrics.RecordError("pipeline_throttle")
			return nil
		}
	}

	if err := p.proc.Process(ctx, o); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- o:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateObservation(o *models.PriceObservation) error {
	if o == nil {
		return fmt.Errorf("observation nil")
	}
	if o.Hub == "" {
		return fmt.Errorf("hub empty")
	}
	if o.Date.IsZero() {
		return fmt.Errorf("date zero")
	}
	if o.HourEnding < 1 || o.HourEnding > 24 {
		return fmt.Errorf("hour_ending out of range: %d", o.HourEnding)
	}
	if !models.IsValidMarket(o.Market) || o.Market == models.MarketDART {
		return fmt.Errorf("market not ingestible: %s", o.Market)
	}
	if !models.IsValidComponent(o.Component) {
		return fmt.Errorf("unknown component: %s", o.Component)
	}
	return nil
}

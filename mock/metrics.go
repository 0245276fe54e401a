package mock

import (
	"sync"
	"time"

	"github.com/fwojciec/transpress"
)

var _ transpress.Metrics = (*Metrics)(nil)

// Metrics is a mock implementation of transpress.Metrics that counts
// outcomes. It is safe for concurrent use.
type Metrics struct {
	mu       sync.Mutex
	Articles map[string]int
	Images   map[string]int
	Runs     int
}

func (m *Metrics) ArticleProcessed(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Articles == nil {
		m.Articles = make(map[string]int)
	}
	m.Articles[outcome]++
}

func (m *Metrics) ImageProcessed(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Images == nil {
		m.Images = make(map[string]int)
	}
	m.Images[outcome]++
}

func (m *Metrics) RunFinished(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs++
}

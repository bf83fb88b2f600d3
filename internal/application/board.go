package application

import (
	"sync"

	"fxmon/internal/domain"
)

// BankBoard keeps the latest published sell rates per (pair, bank).
// Bank rows sit beside the chart; they are comparison figures, not
// chart samples, so stale rows simply persist until the next poll.
type BankBoard struct {
	mu    sync.RWMutex
	rates map[domain.Pair]map[domain.Source]domain.BankQuote
}

func NewBankBoard() *BankBoard {
	return &BankBoard{rates: make(map[domain.Pair]map[domain.Source]domain.BankQuote)}
}

func (b *BankBoard) Put(q domain.BankQuote) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.rates[q.Pair]
	if !ok {
		m = make(map[domain.Source]domain.BankQuote, 2)
		b.rates[q.Pair] = m
	}
	m[q.Source] = q
}

func (b *BankBoard) Get(pair domain.Pair, src domain.Source) (domain.BankQuote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.rates[pair][src]
	return q, ok
}

// ForPair returns the pair's bank rows in fixed board order.
func (b *BankBoard) ForPair(pair domain.Pair) []domain.BankQuote {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []domain.BankQuote
	for _, src := range []domain.Source{domain.SourceBOC, domain.SourceCMB} {
		if q, ok := b.rates[pair][src]; ok {
			out = append(out, q)
		}
	}
	return out
}

package engine

import (
	"errors"
	"sync"
	"testing"

	"stock_sim/internal/domain"
)

func TestStockLedger_GetSet(t *testing.T) {
	l := NewStockLedger(defaultStocks())

	if l.Len() != 5 {
		t.Fatalf("Expected 5 stocks, got %d", l.Len())
	}

	if err := l.SetPrice(2, 3400); err != nil {
		t.Fatalf("SetPrice failed: %v", err)
	}
	s, err := l.Get(2)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.Name != "PUMA" || s.CurrentPrice != 3400 {
		t.Errorf("Expected PUMA@3400, got %+v", s)
	}

	t.Run("out of range", func(t *testing.T) {
		if _, err := l.Get(5); !errors.Is(err, domain.ErrIndexOutOfRange) {
			t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
		}
		if err := l.SetPrice(-1, 1); !errors.Is(err, domain.ErrIndexOutOfRange) {
			t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
		}
		if _, err := l.Mutate(99, func(*domain.Stock) {}); !errors.Is(err, domain.ErrIndexOutOfRange) {
			t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
		}
	})
}

func TestStockLedger_ConstructorCopies(t *testing.T) {
	src := defaultStocks()
	l := NewStockLedger(src)
	src[0].CurrentPrice = 1

	if s, _ := l.Get(0); s.CurrentPrice != 1500 {
		t.Errorf("Ledger should not alias its input, got %v", s.CurrentPrice)
	}
}

func TestStockLedger_FindAndApply(t *testing.T) {
	l := NewStockLedger(defaultStocks())

	i, ok := l.FindByName("YONEX")
	if !ok || i != 3 {
		t.Errorf("Expected YONEX at 3, got %d, %v", i, ok)
	}
	if _, ok := l.FindByName("REEBOK"); ok {
		t.Error("REEBOK should not be found")
	}

	if !l.ApplyByName("LINING", 4321.5) {
		t.Error("ApplyByName should succeed for LINING")
	}
	if s, _ := l.Get(4); s.CurrentPrice != 4321.5 {
		t.Errorf("Expected 4321.5, got %v", s.CurrentPrice)
	}

	before := l.Snapshot()
	if l.ApplyByName("REEBOK", 1) {
		t.Error("ApplyByName should fail for unknown stock")
	}
	after := l.Snapshot()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("Unknown stock must not change the ledger: %+v -> %+v", before[i], after[i])
		}
	}
}

func TestStockLedger_Mutate(t *testing.T) {
	l := NewStockLedger(defaultStocks())

	got, err := l.Mutate(0, func(s *domain.Stock) {
		s.CurrentPrice *= 2
		s.Name = "renamed"
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	if got.CurrentPrice != 3000 {
		t.Errorf("Expected 3000, got %v", got.CurrentPrice)
	}
	if got.Name != "NIKE" {
		t.Errorf("Name must be immutable, got %s", got.Name)
	}
}

func TestStockLedger_CloneIsIndependent(t *testing.T) {
	l := NewStockLedger(defaultStocks())
	c := l.Clone()

	_ = l.SetPrice(0, 1)
	if s, _ := c.Get(0); s.CurrentPrice != 1500 {
		t.Errorf("Clone should be independent, got %v", s.CurrentPrice)
	}
}

func TestStockLedger_ConcurrentMutate(t *testing.T) {
	l := NewStockLedger([]domain.Stock{domain.NewStock("ONE", 0)})

	const workers, perWorker = 8, 1000
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, _ = l.Mutate(0, func(s *domain.Stock) { s.CurrentPrice++ })
				_ = l.Snapshot()
			}
		}()
	}
	wg.Wait()

	if s, _ := l.Get(0); s.CurrentPrice != workers*perWorker {
		t.Errorf("Lost updates: expected %d, got %v", workers*perWorker, s.CurrentPrice)
	}
}

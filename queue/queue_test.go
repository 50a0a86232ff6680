// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package queue

import (
	"sync"
	"testing"
	"time"
)

type item struct {
	val int
	s   string
}

func TestTwoConsumersSeeAllItemsInOrder(t *testing.T) {
	q := New[item](40)
	c1 := q.Consumer()
	c2 := q.Consumer()

	for i := 0; i < 40; i++ {
		q.Add(item{val: i, s: "x"})
	}
	q.Close()

	for i := 0; i < 40; i++ {
		got, ok := c1.Next()
		if !ok {
			t.Fatalf("c1: expected item %d, queue closed early", i)
		}
		if got.val != i {
			t.Fatalf("c1: item %d = %d, want %d", i, got.val, i)
		}
	}
	if _, ok := c1.Next(); ok {
		t.Fatalf("c1: expected end of stream after draining")
	}

	for i := 0; i < 40; i++ {
		got, ok := c2.Next()
		if !ok {
			t.Fatalf("c2: expected item %d, queue closed early", i)
		}
		if got.val != i {
			t.Fatalf("c2: item %d = %d, want %d", i, got.val, i)
		}
	}
}

func TestConsumerCreatedAfterAddsMissesEarlierItems(t *testing.T) {
	q := New[item](10)
	q.Add(item{val: 1})
	q.Add(item{val: 2})

	c := q.Consumer()
	q.Add(item{val: 3})
	q.Close()

	got, ok := c.Next()
	if !ok || got.val != 3 {
		t.Fatalf("got %+v, %v; want {3}, true", got, ok)
	}
	if _, ok := c.Next(); ok {
		t.Fatalf("expected end of stream")
	}
}

func TestConsumerParksUntilProducerAdds(t *testing.T) {
	q := New[item](4)
	c := q.Consumer()

	done := make(chan item)
	go func() {
		v, ok := c.Next()
		if !ok {
			close(done)
			return
		}
		done <- v
	}()

	select {
	case <-done:
		t.Fatalf("consumer returned before any item was added")
	case <-time.After(50 * time.Millisecond):
	}

	q.Add(item{val: 7, s: "late"})

	select {
	case got := <-done:
		if got.val != 7 {
			t.Fatalf("got %+v, want val=7", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("consumer never woke after Add")
	}
}

func TestCloseWakesParkedConsumer(t *testing.T) {
	q := New[item](4)
	c := q.Consumer()

	result := make(chan bool, 1)
	go func() {
		_, ok := c.Next()
		result <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-result:
		if ok {
			t.Fatalf("expected end of stream after Close, got an item")
		}
	case <-time.After(time.Second):
		t.Fatalf("consumer never woke after Close")
	}
}

func TestConcurrentProducersDeliverEveryItem(t *testing.T) {
	q := New[item](256)
	c := q.Consumer()

	const perProducer = 100
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Add(item{val: p*perProducer + i})
			}
		}(p)
	}
	wg.Wait()
	q.Close()

	count := 0
	for {
		_, ok := c.Next()
		if !ok {
			break
		}
		count++
	}
	if count != 4*perProducer {
		t.Fatalf("got %d items, want %d", count, 4*perProducer)
	}
}

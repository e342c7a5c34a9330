package comm

import (
	"context"
	"testing"
	"time"
)

func TestSendRecvRoundTrip(t *testing.T) {
	c := New(2)
	tag := Tag{Direction: 0, Side: 1, Kind: KindEx}.Int()

	recvReq := c.IRecv(1, 0, tag)
	sendReq := c.ISend(0, 1, tag, []float64{1, 2, 3})

	if err := Waitall([]*Request{sendReq, recvReq}); err != nil {
		t.Fatalf("waitall: %v", err)
	}

	got, ok := recvReq.Value().([]float64)
	if !ok || len(got) != 3 || got[1] != 2 {
		t.Fatalf("unexpected payload: %v", recvReq.Value())
	}
}

func TestTagUniqueness(t *testing.T) {
	seen := map[int]Tag{}
	for dir := 0; dir < 3; dir++ {
		for side := 0; side < 2; side++ {
			for k := KindEx; k < numFieldKinds; k++ {
				tag := Tag{Direction: dir, Side: side, Kind: k}
				n := tag.Int()
				if other, exists := seen[n]; exists {
					t.Fatalf("tag collision between %+v and %+v", tag, other)
				}
				seen[n] = tag
			}
		}
	}
}

func TestBarrierReleasesAllParticipants(t *testing.T) {
	n := 4
	b := NewBarrier(n)
	done := make(chan int, n)
	for i := 0; i < n; i++ {
		go func(id int) {
			b.Wait()
			done <- id
		}(i)
	}
	timeout := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-timeout:
			t.Fatal("barrier did not release all participants")
		}
	}
}

func TestAllreduceSumsAcrossRanks(t *testing.T) {
	size := 3
	stage := NewReduceStage(size)
	results := make(chan float64, size)
	ctx := context.Background()
	for r := 0; r < size; r++ {
		go func(rank int) {
			v, err := Allreduce(ctx, nil, rank, float64(rank+1), stage)
			if err != nil {
				t.Error(err)
				return
			}
			results <- v
		}(r)
	}
	for i := 0; i < size; i++ {
		select {
		case v := <-results:
			if v != 6 {
				t.Fatalf("expected sum 6, got %f", v)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("allreduce did not complete")
		}
	}
}

func TestSameRankExchangeDoesNotDeadlock(t *testing.T) {
	c := New(1)
	tag := Tag{Direction: 1, Side: 0, Kind: KindRho}.Int()
	recvReq := c.IRecv(0, 0, tag)
	sendReq := c.ISend(0, 0, tag, 42)
	if err := Waitall([]*Request{sendReq, recvReq}); err != nil {
		t.Fatalf("waitall: %v", err)
	}
	if recvReq.Value().(int) != 42 {
		t.Fatalf("unexpected payload: %v", recvReq.Value())
	}
}

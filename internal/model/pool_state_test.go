package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestBinPoolStateMissingActiveTick(t *testing.T) {
	var state BinPoolState
	if err := json.Unmarshal([]byte(`{"pool":"component_rdx1","resource_x":"resource_x","resource_y":"resource_y","active_tick":null,"bin_span":50}`), &state); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if state.ActiveTick != nil {
		t.Fatalf("expected nil active tick, got %d", *state.ActiveTick)
	}
	if state.BinSpan != 50 {
		t.Fatalf("unexpected bin span %d", state.BinSpan)
	}
}

func TestPoolMetaSqrtPriceState(t *testing.T) {
	meta := PoolMeta{
		Token0:      "0xaaaa",
		Token1:      "0xbbbb",
		Fee:         3000,
		TickSpacing: 60,
	}
	got := meta.SqrtPriceState("0xpool", PoolSlot0{SqrtPriceX96: "79228162514264337593543950336", Tick: -5})
	want := SqrtPricePoolState{
		Pool:         "0xpool",
		Token0:       "0xaaaa",
		Token1:       "0xbbbb",
		SqrtPriceX96: "79228162514264337593543950336",
		Tick:         -5,
		TickSpacing:  60,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("state mismatch: %+v != %+v", got, want)
	}
}

func TestBinSnapshotKey(t *testing.T) {
	snap := BinSnapshot{BlockNumber: 36000000, TxHash: "0xdef456", LogIndex: 12}
	if got := snap.Key(); got != "36000000:0xdef456:12" {
		t.Fatalf("unexpected key %q", got)
	}
}

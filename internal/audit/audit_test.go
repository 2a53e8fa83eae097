package audit

import (
	"context"
	"fmt"
	"testing"

	"cdc_zoning/internal/model"
)

func TestMemory_NewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	for i := 1; i <= 5; i++ {
		m.Record(ctx, &model.OperationLog{Operation: "create_zone", Message: fmt.Sprintf("m%d", i), Success: i%2 == 1})
	}

	got, err := m.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var msgs []string
	for _, e := range got {
		msgs = append(msgs, e.Message)
	}
	if want := []string{"m5", "m4", "m3"}; fmt.Sprint(msgs) != fmt.Sprint(want) {
		t.Errorf("messages = %v, want %v", msgs, want)
	}
	if got[0].ID != 5 {
		t.Errorf("newest id = %d, want 5", got[0].ID)
	}
}

func TestMemory_Filter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)
	m.Record(ctx, &model.OperationLog{Operation: "create_zone", Success: true})
	m.Record(ctx, &model.OperationLog{Operation: "delete_zone", Success: false})
	m.Record(ctx, &model.OperationLog{Operation: "create_zone", Success: false})

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"by operation", Filter{Operation: "create_zone"}, 2},
		{"failed", Filter{Failed: true}, 2},
		{"failed by operation", Filter{Operation: "create_zone", Failed: true}, 1},
		{"limit", Filter{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := m.List(ctx, tt.filter)
			if len(got) != tt.want {
				t.Errorf("List(%+v) = %d entries, want %d", tt.filter, len(got), tt.want)
			}
		})
	}
}

package store

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type stubReferencer struct {
	exists, deleted bool
	err             error
	calls           int
}

func (s *stubReferencer) Reference(context.Context, any) (bool, bool, error) {
	s.calls++
	return s.exists, s.deleted, s.err
}

func TestCheckForeignKeys(t *testing.T) {
	repo, _, db := setupGadgets(t)
	ctx := context.Background()
	active := seedGadget(t, db, gadget{Name: "lamp"})
	gone := seedGadget(t, db, gadget{Name: "kettle", IsDeleted: true})

	tests := []struct {
		name       string
		data       map[string]any
		wantStatus int
		wantKeys   []InvalidKey
	}{
		{"all valid", map[string]any{"gadgetId": active.ID, "spareId": active.ID}, http.StatusOK, nil},
		{"absent keys skipped", map[string]any{}, http.StatusOK, nil},
		{"zero and nil skipped", map[string]any{"gadgetId": uint(0), "spareId": (*uint)(nil)}, http.StatusOK, nil},
		{"missing and deleted in order", map[string]any{"gadgetId": uint(999), "spareId": gone.ID}, http.StatusBadRequest, []InvalidKey{
			{Key: "gadgetId", ResMessage: "Gadget not found"},
			{Key: "spareId", ResMessage: "spareId is deleted"},
		}},
		{"pointer value", map[string]any{"gadgetId": ptr(uint(999))}, http.StatusBadRequest, []InvalidKey{
			{Key: "gadgetId", ResMessage: "Gadget not found"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckForeignKeys(ctx, discardLogger(), tt.data,
				ForeignKey{Field: "gadgetId", Target: repo, Message: "Gadget not found"},
				ForeignKey{Field: "spareId", Target: repo, Message: "Spare not found"},
			)
			if err != nil {
				t.Fatalf("CheckForeignKeys() error = %v", err)
			}
			if got.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", got.StatusCode, tt.wantStatus)
			}
			if len(got.Data) != len(tt.wantKeys) {
				t.Fatalf("Data = %+v, want %+v", got.Data, tt.wantKeys)
			}
			for i := range tt.wantKeys {
				if got.Data[i] != tt.wantKeys[i] {
					t.Errorf("Data[%d] = %+v, want %+v", i, got.Data[i], tt.wantKeys[i])
				}
			}
			if tt.wantStatus == http.StatusBadRequest && got.Message != "One or more foreign keys are invalid" {
				t.Errorf("Message = %q", got.Message)
			}
		})
	}
}

func TestCheckForeignKeys_Error(t *testing.T) {
	boom := errors.New("connection reset")
	broken := &stubReferencer{err: boom}
	skipped := &stubReferencer{exists: true}

	_, err := CheckForeignKeys(context.Background(), discardLogger(),
		map[string]any{"a": 1},
		ForeignKey{Field: "a", Target: broken},
		ForeignKey{Field: "b", Target: skipped},
	)
	if !errors.Is(err, boom) {
		t.Errorf("CheckForeignKeys() error = %v, want %v", err, boom)
	}
	if skipped.calls != 0 {
		t.Errorf("absent key looked up %d times", skipped.calls)
	}
}

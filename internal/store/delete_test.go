package store

import (
	"context"
	"net/http"
	"testing"
)

func TestDelete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		seed       gadget
		missing    bool
		wantStatus int
		wantRows   int64
	}{
		{"active", gadget{Name: "lamp"}, false, http.StatusOK, 0},
		{"soft deleted", gadget{Name: "kettle", IsDeleted: true}, false, http.StatusOK, 0},
		{"missing", gadget{Name: "fan"}, true, http.StatusNotFound, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, counting, db := setupGadgets(t)
			g := seedGadget(t, db, tt.seed)
			where := repo.ByID(g.ID)
			if tt.missing {
				where = repo.ByID(g.ID + 100)
			}

			got, err := repo.Delete(ctx, where, Selection{}, gadgetMsgs)
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if got.StatusCode != tt.wantStatus {
				t.Errorf("Delete() status = %d, want %d", got.StatusCode, tt.wantStatus)
			}
			if got.Success && (got.Data == nil || got.Data.Name != tt.seed.Name) {
				t.Errorf("Delete() data = %+v", got.Data)
			}
			if tt.missing && counting.writes != 0 {
				t.Errorf("writes = %d, want 0", counting.writes)
			}

			var rows int64
			db.Model(&gadget{}).Count(&rows)
			if rows != tt.wantRows {
				t.Errorf("rows = %d, want %d", rows, tt.wantRows)
			}
		})
	}
}

func TestDeleteMany(t *testing.T) {
	repo, _, db := setupGadgets(t)
	ctx := context.Background()
	seedGadget(t, db, gadget{Name: "a", Stock: 0})
	seedGadget(t, db, gadget{Name: "b", Stock: 0})
	seedGadget(t, db, gadget{Name: "c", Stock: 2})

	got, err := repo.DeleteMany(ctx, Where(Eq("stock", 0)), gadgetMsgs)
	if err != nil {
		t.Fatalf("DeleteMany() error = %v", err)
	}
	if !got.Success || got.Data.Count != 2 {
		t.Errorf("DeleteMany() = %+v", got)
	}

	got, err = repo.DeleteMany(ctx, Where(Eq("stock", 0)), gadgetMsgs)
	if err != nil {
		t.Fatalf("DeleteMany() error = %v", err)
	}
	if !got.Success || got.StatusCode != http.StatusOK || got.Data.Count != 0 {
		t.Errorf("DeleteMany() with no match = %+v", got)
	}
}

func TestDeleteMany_EmptyFilterRefused(t *testing.T) {
	repo, _, db := setupGadgets(t)
	seedGadget(t, db, gadget{Name: "a"})

	var name *string
	if _, err := repo.DeleteMany(context.Background(), Where(Eq("name", name)), gadgetMsgs); err == nil {
		t.Error("DeleteMany() with an empty filter should fail")
	}
	var rows int64
	db.Model(&gadget{}).Count(&rows)
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}
}

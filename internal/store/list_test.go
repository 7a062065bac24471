package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func seedMany(t *testing.T, repo *Repository[gadget], n int) {
	t.Helper()
	records := make([]gadget, n)
	for i := range records {
		records[i] = gadget{Name: fmt.Sprintf("gadget-%02d", i+1), Price: float64(i + 1), Stock: 1}
	}
	got, err := repo.CreateMany(context.Background(), nil, records, gadgetMsgs)
	if err != nil || !got.Success {
		t.Fatalf("seed %d gadgets: %+v, %v", n, got, err)
	}
}

func TestGetAll_Pagination(t *testing.T) {
	repo, _, _ := setupGadgets(t)
	ctx := context.Background()
	seedMany(t, repo, 25)

	tests := []struct {
		name          string
		page          PageRequest
		wantStatus    int
		wantLen       int
		wantPages     int
		wantCurrent   int
		wantFirstName string
	}{
		{"first page", PageRequest{Limit: 10, Page: 1}, http.StatusOK, 10, 3, 1, "gadget-01"},
		{"last partial page", PageRequest{Limit: 10, Page: 3}, http.StatusOK, 5, 3, 3, "gadget-21"},
		{"page exceeded", PageRequest{Limit: 10, Page: 4}, http.StatusBadRequest, 0, 3, 4, ""},
		{"unpaginated", PageRequest{}, http.StatusOK, 25, 0, 0, "gadget-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetAll(ctx, nil, Selection{}, gadgetMsgs, tt.page)
			if err != nil {
				t.Fatalf("GetAll() error = %v", err)
			}
			if got.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", got.StatusCode, tt.wantStatus)
			}
			if len(got.Data) != tt.wantLen {
				t.Errorf("len(Data) = %d, want %d", len(got.Data), tt.wantLen)
			}
			if got.TotalPages != tt.wantPages || got.CurrentPage != tt.wantCurrent {
				t.Errorf("pages = %d/%d, want %d/%d", got.CurrentPage, got.TotalPages, tt.wantCurrent, tt.wantPages)
			}
			if got.TotalDataCount != 25 {
				t.Errorf("TotalDataCount = %d, want 25", got.TotalDataCount)
			}
			if tt.wantFirstName != "" && got.Data[0].Name != tt.wantFirstName {
				t.Errorf("first record = %q, want %q", got.Data[0].Name, tt.wantFirstName)
			}
		})
	}
}

func TestGetAll_PageExceededMessage(t *testing.T) {
	repo, _, _ := setupGadgets(t)
	seedMany(t, repo, 3)

	got, err := repo.GetAll(context.Background(), nil, Selection{}, gadgetMsgs, PageRequest{Limit: 2, Page: 5})
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if got.Success || got.Message != "Page number exceeded total pages available" {
		t.Errorf("GetAll() = %v/%q", got.Success, got.Message)
	}
	if got.Data == nil {
		t.Error("Data should be an empty slice, not nil")
	}
}

func TestGetAll_Empty(t *testing.T) {
	repo, _, _ := setupGadgets(t)
	ctx := context.Background()

	for _, page := range []PageRequest{{}, {Limit: 5, Page: 1}} {
		got, err := repo.GetAll(ctx, nil, Selection{}, gadgetMsgs, page)
		if err != nil {
			t.Fatalf("GetAll(%+v) error = %v", page, err)
		}
		if got.StatusCode != http.StatusNotFound || got.Message != gadgetMsgs.NotFound {
			t.Errorf("GetAll(%+v) = %d/%q, want 404/%q", page, got.StatusCode, got.Message, gadgetMsgs.NotFound)
		}
		if got.TotalDataCount != 0 || len(got.Data) != 0 {
			t.Errorf("GetAll(%+v) returned data: %+v", page, got)
		}
	}
}

func TestGetAll_PartialPagination(t *testing.T) {
	repo, counting, _ := setupGadgets(t)
	ctx := context.Background()

	for _, page := range []PageRequest{{Limit: 10}, {Page: 2}, {Limit: -1, Page: 1}} {
		_, err := repo.GetAll(ctx, nil, Selection{}, gadgetMsgs, page)
		if !errors.Is(err, ErrPartialPagination) {
			t.Errorf("GetAll(%+v) error = %v, want ErrPartialPagination", page, err)
		}
	}
	if counting.writes != 0 {
		t.Errorf("writes = %d, want 0", counting.writes)
	}
}

func TestGetAll_PrunedFilterMatchesCount(t *testing.T) {
	repo, _, _ := setupGadgets(t)
	seedMany(t, repo, 4)

	var name *string
	got, err := repo.GetAll(context.Background(),
		Where(Eq("name", name), Range("price", 2, 3)), Selection{}, gadgetMsgs, PageRequest{Limit: 1, Page: 2})
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if got.TotalDataCount != 2 || got.TotalPages != 2 || len(got.Data) != 1 {
		t.Fatalf("GetAll() = %+v", got)
	}
	if got.Data[0].Name != "gadget-03" {
		t.Errorf("Data[0].Name = %q, want gadget-03", got.Data[0].Name)
	}
}

func TestCountAndSum(t *testing.T) {
	repo, _, _ := setupGadgets(t)
	ctx := context.Background()
	seedMany(t, repo, 4)

	count, err := repo.Count(ctx, Where(Range("price", 3, nil)))
	if err != nil || count != 2 {
		t.Errorf("Count() = %d, %v; want 2", count, err)
	}

	sum, err := repo.Sum(ctx, "price", nil)
	if err != nil || sum != 10 {
		t.Errorf("Sum(price) = %v, %v; want 10", sum, err)
	}

	sum, err = repo.Sum(ctx, "price", Where(Eq("name", "missing")))
	if err != nil || sum != 0 {
		t.Errorf("Sum() with no match = %v, %v; want 0", sum, err)
	}

	if _, err := repo.Sum(ctx, "weight", nil); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("Sum(weight) error = %v, want ErrUnknownColumn", err)
	}
}

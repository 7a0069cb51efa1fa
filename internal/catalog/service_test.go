package catalog

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
)

func TestCreateAndSearchParts(t *testing.T) {
	service := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	created, err := service.CreatePart(ctx, Part{Name: "  Ball Valve ", Number: "BV-12", UnitCost: 4.5, UnitPrice: 9})
	if err != nil {
		t.Fatalf("CreatePart returned error: %v", err)
	}
	if created.ID == 0 || created.Name != "Ball Valve" {
		t.Fatalf("unexpected part %+v", created)
	}
	if _, err := service.CreatePart(ctx, Part{Name: "Gasket", UnitCost: 0.2, UnitPrice: 1}); err != nil {
		t.Fatalf("CreatePart returned error: %v", err)
	}

	parts, err := service.SearchParts(ctx, "valve")
	if err != nil {
		t.Fatalf("SearchParts returned error: %v", err)
	}
	if len(parts) != 1 || parts[0].Number != "BV-12" {
		t.Fatalf("expected only the valve, got %+v", parts)
	}
}

func TestCreatePartValidation(t *testing.T) {
	service := NewService(newFakeRepo(), nil)

	cases := []Part{
		{Name: " ", UnitCost: 1, UnitPrice: 1},
		{Name: "Pipe", UnitCost: -1, UnitPrice: 1},
		{Name: "Pipe", UnitCost: 1, UnitPrice: math.NaN()},
	}
	for _, p := range cases {
		if _, err := service.CreatePart(context.Background(), p); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", p, err)
		}
	}
}

func TestUpdateAndDeleteMissingPart(t *testing.T) {
	service := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	if _, err := service.UpdatePart(ctx, Part{ID: 99, Name: "Ghost"}); !errors.Is(err, ErrPartNotFound) {
		t.Fatalf("expected ErrPartNotFound, got %v", err)
	}
	if err := service.DeletePart(ctx, 99); !errors.Is(err, ErrPartNotFound) {
		t.Fatalf("expected ErrPartNotFound, got %v", err)
	}
}

func TestUpdatePartReplacesFields(t *testing.T) {
	service := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	created, err := service.CreatePart(ctx, Part{Name: "Hose", UnitCost: 2, UnitPrice: 5, PictureRef: "hose.jpg"})
	if err != nil {
		t.Fatalf("CreatePart returned error: %v", err)
	}
	if _, err := service.UpdatePart(ctx, Part{ID: created.ID, Name: "Hose 3m", UnitCost: 3, UnitPrice: 7}); err != nil {
		t.Fatalf("UpdatePart returned error: %v", err)
	}

	got, err := service.GetPart(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPart returned error: %v", err)
	}
	if got.Name != "Hose 3m" || got.PictureRef != "" || got.UnitPrice != 7 {
		t.Fatalf("part not replaced: %+v", got)
	}
}

func TestTravelLifecycle(t *testing.T) {
	service := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	entry, err := service.CreateTravel(ctx, Travel{Location: "Springfield", Hours: 1.5})
	if err != nil {
		t.Fatalf("CreateTravel returned error: %v", err)
	}
	if _, err := service.CreateTravel(ctx, Travel{Location: "Springfield", Hours: 2}); !errors.Is(err, ErrTravelExists) {
		t.Fatalf("expected ErrTravelExists, got %v", err)
	}

	found, err := service.SearchTravel(ctx, "SPRING")
	if err != nil {
		t.Fatalf("SearchTravel returned error: %v", err)
	}
	if len(found) != 1 || found[0].Hours != 1.5 {
		t.Fatalf("unexpected search result %+v", found)
	}

	if _, err := service.UpdateTravel(ctx, Travel{ID: entry.ID, Location: "Springfield", Hours: 2.25}); err != nil {
		t.Fatalf("UpdateTravel returned error: %v", err)
	}
	if err := service.DeleteTravel(ctx, entry.ID); err != nil {
		t.Fatalf("DeleteTravel returned error: %v", err)
	}
	if err := service.DeleteTravel(ctx, entry.ID); !errors.Is(err, ErrTravelNotFound) {
		t.Fatalf("expected ErrTravelNotFound, got %v", err)
	}
}

func TestCreateTravelValidation(t *testing.T) {
	service := NewService(newFakeRepo(), nil)

	if _, err := service.CreateTravel(context.Background(), Travel{Location: "", Hours: 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.CreateTravel(context.Background(), Travel{Location: "Shelbyville", Hours: -0.5}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	if got := likePattern(`50%_off\`); got != `%50\%\_off\\%` {
		t.Fatalf("unexpected pattern %q", got)
	}
}

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	parts  map[int64]Part
	travel map[int64]Travel
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{parts: make(map[int64]Part), travel: make(map[int64]Travel)}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) SearchParts(ctx context.Context, fragment string) ([]Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Part{}
	for _, p := range f.parts {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(fragment)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) GetPart(ctx context.Context, id int64) (Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.parts[id]
	if !ok {
		return Part{}, ErrPartNotFound
	}
	return p, nil
}

func (f *fakeRepo) CreatePart(ctx context.Context, p Part) (Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.id()
	f.parts[p.ID] = p
	return p, nil
}

func (f *fakeRepo) UpdatePart(ctx context.Context, p Part) (Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.parts[p.ID]; !ok {
		return Part{}, ErrPartNotFound
	}
	f.parts[p.ID] = p
	return p, nil
}

func (f *fakeRepo) DeletePart(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.parts[id]; !ok {
		return ErrPartNotFound
	}
	delete(f.parts, id)
	return nil
}

func (f *fakeRepo) SearchTravel(ctx context.Context, fragment string) ([]Travel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Travel{}
	for _, t := range f.travel {
		if strings.Contains(strings.ToLower(t.Location), strings.ToLower(fragment)) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out, nil
}

func (f *fakeRepo) CreateTravel(ctx context.Context, t Travel) (Travel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.travel {
		if existing.Location == t.Location {
			return Travel{}, ErrTravelExists
		}
	}
	t.ID = f.id()
	f.travel[t.ID] = t
	return t, nil
}

func (f *fakeRepo) UpdateTravel(ctx context.Context, t Travel) (Travel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.travel[t.ID]; !ok {
		return Travel{}, ErrTravelNotFound
	}
	f.travel[t.ID] = t
	return t, nil
}

func (f *fakeRepo) DeleteTravel(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.travel[id]; !ok {
		return ErrTravelNotFound
	}
	delete(f.travel, id)
	return nil
}
